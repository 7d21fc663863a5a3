package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"set_syncer/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	query := `
		SELECT source_id, last_synced_at, total_synced, last_failed
		FROM sync_state
		WHERE source_id = ?`

	var state domain.SyncState
	err := s.db.GetContext(ctx, &state, query, sourceID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &domain.SyncState{SourceID: sourceID}, nil
	case err != nil:
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &state, nil
}

func (s *SyncStateStore) Update(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO sync_state (source_id, last_synced_at, total_synced, last_failed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			total_synced = excluded.total_synced,
			last_failed = excluded.last_failed`

	_, err := s.db.ExecContext(ctx, query,
		state.SourceID,
		state.LastSyncedAt.UTC(),
		state.TotalSynced,
		state.LastFailed,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
