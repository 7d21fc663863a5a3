// Package memory keeps the catalog in process memory. It backs dry runs and
// tests and follows the same conflict rules as the SQL stores.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"set_syncer/internal/domain"
)

var (
	errDuplicateID   = errors.New("duplicate id")
	errDuplicateCode = errors.New("duplicate code")
)

type SetStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Set
	byCode map[string]string
}

func NewSetStore() *SetStore {
	return &SetStore{
		byID:   make(map[string]*domain.Set),
		byCode: make(map[string]string),
	}
}

func (s *SetStore) FindByID(ctx context.Context, id string) (*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return set, nil
}

func (s *SetStore) GetAll(ctx context.Context) ([]*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	sets := make([]*domain.Set, 0, len(s.byID))
	for _, set := range s.byID {
		sets = append(sets, set)
	}
	s.mu.RUnlock()

	slices.SortFunc(sets, func(a, b *domain.Set) int {
		return strings.Compare(a.Code(), b.Code())
	})
	return sets, nil
}

func (s *SetStore) Create(ctx context.Context, set *domain.Set) (*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[set.ID()]; ok {
		return nil, &domain.ConflictError{ID: set.ID(), Constraint: "id", Err: errDuplicateID}
	}
	if _, ok := s.byCode[set.Code()]; ok {
		return nil, &domain.ConflictError{ID: set.ID(), Constraint: "code", Err: errDuplicateCode}
	}

	s.byID[set.ID()] = set
	s.byCode[set.Code()] = set.ID()
	return set, nil
}

func (s *SetStore) Upsert(ctx context.Context, set *domain.Set) (*domain.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byCode[set.Code()]; ok && owner != set.ID() {
		return nil, &domain.ConflictError{ID: set.ID(), Constraint: "code", Err: errDuplicateCode}
	}

	if prev, ok := s.byID[set.ID()]; ok {
		delete(s.byCode, prev.Code())
	}
	s.byID[set.ID()] = set
	s.byCode[set.Code()] = set.ID()
	return set, nil
}

// Len reports the number of stored sets.
func (s *SetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
