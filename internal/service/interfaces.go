package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"set_syncer/internal/domain"
)

// SetStore persists sets keyed by their stable id.
type SetStore interface {
	// FindByID returns domain.ErrNotFound when no set has the id.
	FindByID(ctx context.Context, id string) (*domain.Set, error)
	GetAll(ctx context.Context) ([]*domain.Set, error)
	// Create fails with *domain.ConflictError if the id or code is taken.
	Create(ctx context.Context, set *domain.Set) (*domain.Set, error)
	// Upsert inserts the set or overwrites every field of the existing row.
	Upsert(ctx context.Context, set *domain.Set) (*domain.Set, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type Source interface {
	ID() string
	Name() string
	FetchSets(ctx context.Context) ([]domain.RawSet, error)
}

type Publisher interface {
	Publish(ctx context.Context, set *domain.Set, isNew bool) error
	Close() error
}
