// Package database provides SQLite connectivity for Adaptive Cover Core.
//
// It owns the connection lifecycle (WAL mode, busy timeout, single writer)
// and applies the embedded schema migrations. The only persistent data is
// entity restore state, so the schema is small.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.{up,down}.sql and
// registered by the migrations package through MigrationsFS.
package database
