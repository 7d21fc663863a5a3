package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"set_syncer/migrations"
)

const (
	defaultMaxOpenConns    = 4
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 10 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Connect opens a pooled connection and, when migrate is set, applies the
// embedded schema.
func Connect(ctx context.Context, dsn string, migrate bool) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if migrate {
		if err := migrations.Up(ctx, db.DB, "postgres"); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
