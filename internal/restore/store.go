package restore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store defines restore persistence for number entities.
type Store interface {
	// LastNumberData returns the saved record for uniqueID, or nil when none exists.
	LastNumberData(ctx context.Context, uniqueID string) (*NumberData, error)

	// SaveNumberData inserts or replaces the record for uniqueID.
	SaveNumberData(ctx context.Context, uniqueID string, data *NumberData) error
}

// Logger defines the logging interface used by the store.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger Logger
}

// NewSQLiteStore creates a store on an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, logger: noopLogger{}}
}

// SetLogger sets the logger used to report malformed records.
func (s *SQLiteStore) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// LastNumberData returns the saved record for uniqueID.
// It returns nil, nil when no record exists or the stored JSON cannot be decoded.
func (s *SQLiteStore) LastNumberData(ctx context.Context, uniqueID string) (*NumberData, error) {
	if uniqueID == "" {
		return nil, ErrInvalidEntityID
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM restore_state WHERE entity_id = ? AND domain = ?`,
		uniqueID, DomainNumber,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // absence is not an error
		}
		return nil, fmt.Errorf("querying restore state: %w", err)
	}

	var data NumberData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("discarding malformed restore state", "entity_id", uniqueID, "error", err)
		return nil, nil //nolint:nilnil // malformed rows read as absent
	}
	return &data, nil
}

// SaveNumberData inserts or replaces the record for uniqueID.
func (s *SQLiteStore) SaveNumberData(ctx context.Context, uniqueID string, data *NumberData) error {
	if uniqueID == "" {
		return ErrInvalidEntityID
	}
	if data == nil {
		return ErrNilData
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling restore state: %w", err)
	}

	query := `
		INSERT INTO restore_state (entity_id, domain, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			domain = excluded.domain,
			data = excluded.data,
			updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, query, uniqueID, DomainNumber, string(raw), now); err != nil {
		return fmt.Errorf("saving restore state: %w", err)
	}
	return nil
}

// Prune deletes records not updated since before. It returns the number of
// rows removed.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM restore_state WHERE updated_at < ?`,
		before.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning restore state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}
