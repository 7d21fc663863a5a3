// Package migrations embeds the schema for every supported database and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialects maps a database driver name to its goose dialect and the
// directory holding its migrations.
var Dialects = map[string]struct {
	Goose string
	Dir   string
}{
	"postgres": {Goose: "postgres", Dir: "postgres"},
	"sqlite3":  {Goose: "sqlite3", Dir: "sqlite"},
}

// goose keeps its dialect and filesystem in package state.
var mu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration for driver.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	d, ok := Dialects[driver]
	if !ok {
		return fmt.Errorf("migrations: unsupported driver %q", driver)
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(d.Goose); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, d.Dir); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
