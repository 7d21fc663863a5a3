// Package sqlite stores the catalog in a local SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"set_syncer/migrations"
)

const driverName = "sqlite3"

// Open opens the catalog at path with a single writer connection and, when
// migrate is set, applies the embedded schema. ":memory:" is accepted.
func Open(ctx context.Context, path string, migrate bool) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if migrate {
		if err := migrations.Up(ctx, db.DB, driverName); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}
