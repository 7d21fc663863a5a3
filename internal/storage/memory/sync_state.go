package memory

import (
	"context"
	"sync"

	"set_syncer/internal/domain"
)

type SyncStateStore struct {
	mu     sync.Mutex
	states map[string]domain.SyncState
}

func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{states: make(map[string]domain.SyncState)}
}

func (s *SyncStateStore) Get(_ context.Context, sourceID string) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sourceID]
	if !ok {
		return &domain.SyncState{SourceID: sourceID}, nil
	}
	return &state, nil
}

func (s *SyncStateStore) Update(_ context.Context, state *domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.SourceID] = *state
	return nil
}
