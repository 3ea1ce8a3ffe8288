package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/database"
	"github.com/nerrad567/adaptive-cover/internal/restore"
)

// NewMigrateCommand groups the schema migration subcommands.
func NewMigrateCommand(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(cmd.Context(), configPath(), func(db *database.DB) error {
					if err := db.Migrate(cmd.Context()); err != nil {
						return fmt.Errorf("running migrations: %w", err)
					}
					cmd.Println("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(cmd.Context(), configPath(), func(db *database.DB) error {
					if err := db.MigrateDown(cmd.Context()); err != nil {
						return fmt.Errorf("rolling back migration: %w", err)
					}
					cmd.Println("last migration rolled back")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(cmd.Context(), configPath(), func(db *database.DB) error {
					applied, pending, err := db.GetMigrationStatus(cmd.Context())
					if err != nil {
						return fmt.Errorf("reading migration status: %w", err)
					}
					for _, m := range applied {
						cmd.Printf("applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
					}
					for _, m := range pending {
						cmd.Printf("pending  %s  %s\n", m.Version, m.Name)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// NewPruneCommand deletes restore state that has not been written recently,
// such as rows left behind by removed entries.
func NewPruneCommand(configPath func() string) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete stale restore state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return withDatabase(cmd.Context(), configPath(), func(db *database.DB) error {
				if err := db.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				n, err := restore.NewSQLiteStore(db.DB).Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				cmd.Printf("pruned %d restore rows\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "delete rows last written before this age")
	return cmd
}

// withDatabase loads the config, opens the database and calls fn.
func withDatabase(ctx context.Context, configPath string, fn func(*database.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return fn(db)
}
