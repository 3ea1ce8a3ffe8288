package number

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/cover"
	"github.com/nerrad567/adaptive-cover/internal/entity"
	"github.com/nerrad567/adaptive-cover/internal/restore"
)

func openRestoreDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE restore_state (
		entity_id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	) STRICT`); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// boot wires a coordinator, platform and distance entity the way serve does.
func boot(t *testing.T, db *sql.DB, entry cover.Entry, update coordinator.UpdateFunc) (*coordinator.Coordinator, *entity.Platform) {
	t.Helper()

	coord := coordinator.New(entry, cover.Site{Latitude: 51.5, Longitude: -0.12},
		coordinator.WithClock(func() time.Time { return time.Date(2026, 6, 21, 9, 0, 0, 0, time.UTC) }),
		coordinator.WithUpdateFunc(update),
	)
	platform := entity.NewPlatform(restore.NewSQLiteStore(db))
	SetupEntry(entry, coord, platform.AddEntities)
	return coord, platform
}

func TestIntegration_RestoreAcrossRestart(t *testing.T) {
	ctx := context.Background()
	db := openRestoreDB(t)
	entry := cover.Entry{ID: "office", SensorType: cover.SensorTypeBlind, Options: cover.Options{
		WindowAzimuth: 180, FOVLeft: 90, FOVRight: 90, WindowHeight: 2.1, DefaultPosition: 60,
	}}
	uniqueID := "office_distance_shaded_area"

	coord, platform := boot(t, db, entry, coordinator.DefaultUpdate)
	if err := platform.AttachAll(ctx); err != nil {
		t.Fatalf("AttachAll() error = %v", err)
	}
	if st, _ := platform.State(uniqueID); st.Value != DefaultDistance {
		t.Errorf("initial value = %v, want %v", st.Value, DefaultDistance)
	}

	if err := platform.SetValue(ctx, uniqueID, 1.4); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	data, ok := coord.Data()
	if !ok || data.Distance != 1.4 {
		t.Errorf("coordinator data distance = %v (ok=%v), want 1.4", data.Distance, ok)
	}

	// Restart: a fresh coordinator and platform over the same database.
	coord2, platform2 := boot(t, db, entry, coordinator.DefaultUpdate)
	if err := platform2.AttachAll(ctx); err != nil {
		t.Fatalf("AttachAll() after restart error = %v", err)
	}
	if got := coord2.DistanceOverride(); got == nil || *got != 1.4 {
		t.Errorf("restored override = %v, want 1.4", got)
	}
}

func TestIntegration_TiltRegistersNothing(t *testing.T) {
	_, platform := boot(t, openRestoreDB(t), cover.Entry{ID: "slats", SensorType: cover.SensorTypeTilt}, coordinator.DefaultUpdate)
	if got := platform.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestIntegration_RefreshFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	failing := false
	update := func(ctx context.Context, in coordinator.Inputs) (cover.Result, error) {
		if failing {
			return cover.Result{}, errors.New("sun source offline")
		}
		return coordinator.DefaultUpdate(ctx, in)
	}

	coord, platform := boot(t, openRestoreDB(t), cover.Entry{ID: "porch", SensorType: cover.SensorTypeAwning}, update)
	if err := platform.AttachAll(ctx); err != nil {
		t.Fatalf("AttachAll() error = %v", err)
	}

	failing = true
	err := platform.SetValue(ctx, "porch_distance_shaded_area", 0.9)
	if !errors.Is(err, coordinator.ErrUpdateFailed) {
		t.Errorf("SetValue() error = %v, want ErrUpdateFailed", err)
	}
	if got := coord.DistanceOverride(); got == nil || *got != 0.9 {
		t.Errorf("override = %v, want 0.9", got)
	}
}
