package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"set_syncer/internal/config"
	"set_syncer/internal/service"
	"set_syncer/internal/storage/memory"
	"set_syncer/internal/storage/postgres"
	"set_syncer/internal/storage/sqlite"
)

type stores struct {
	sets      service.SetStore
	syncState service.SyncStateStore
	db        *sqlx.DB
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.DSN(), cfg.ShouldMigrate())
		if err != nil {
			return nil, err
		}
		return &stores{
			sets:      postgres.NewSetStore(db),
			syncState: postgres.NewSyncStateStore(db),
			db:        db,
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path, cfg.ShouldMigrate())
		if err != nil {
			return nil, err
		}
		return &stores{
			sets:      sqlite.NewSetStore(db),
			syncState: sqlite.NewSyncStateStore(db),
			db:        db,
		}, nil
	case config.DriverMemory:
		return &stores{
			sets:      memory.NewSetStore(),
			syncState: memory.NewSyncStateStore(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// printCatalog writes every stored set as one JSON object per line.
func printCatalog(ctx context.Context, sets service.SetStore, w io.Writer) error {
	all, err := sets.GetAll(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, set := range all {
		if err := enc.Encode(set); err != nil {
			return fmt.Errorf("write set %q: %w", set.ID(), err)
		}
	}
	return nil
}
