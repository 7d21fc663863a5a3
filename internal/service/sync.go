package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"set_syncer/internal/config"
	"set_syncer/internal/domain"
)

// SyncService pulls the full set collection from a source and upserts every
// valid record into the store. Bad records are counted and skipped; only a
// failed fetch aborts a run.
type SyncService struct {
	source    Source
	sets      SetStore
	syncState SyncStateStore
	publisher Publisher
	logger    *slog.Logger
	config    config.SyncConfig
	locks     *keyLock
}

// NewSyncService wires the orchestrator. syncState and publisher may be nil.
func NewSyncService(
	source Source,
	sets SetStore,
	syncState SyncStateStore,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:    source,
		sets:      sets,
		syncState: syncState,
		publisher: publisher,
		logger:    logger.With("source", source.ID()),
		config:    cfg,
		locks:     newKeyLock(),
	}
}

// tally accumulates per-record outcomes from concurrent workers.
type tally struct {
	mu    sync.Mutex
	stats *domain.SyncStats
}

func (t *tally) saved(isNew bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if isNew {
		t.stats.Created++
	} else {
		t.stats.Updated++
	}
}

func (t *tally) failed(index int, identifier string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Failed++
	t.stats.Failures = append(t.stats.Failures, domain.RecordFailure{
		Index:      index,
		Identifier: identifier,
		Message:    err.Error(),
		Kind:       domain.KindOf(err),
	})
}

func (t *tally) published(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.stats.PublishErrors++
		return
	}
	t.stats.Published++
}

func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	logger.Info("starting sync",
		"source_name", s.source.Name(),
		"workers", s.workers(),
	)

	raws, err := s.source.FetchSets(ctx)
	if err != nil {
		logger.Error("fetch failed", "error", err, "kind", domain.KindOf(err))
		return nil, fmt.Errorf("fetch sets: %w", err)
	}

	logger.Info("fetched sets from source", "count", len(raws))

	stats := &domain.SyncStats{
		RunID:    runID,
		SourceID: s.source.ID(),
		Fetched:  len(raws),
	}
	t := &tally{stats: stats}

	if s.workers() == 1 {
		for i, raw := range raws {
			if ctx.Err() != nil {
				break
			}
			s.process(ctx, logger, t, i, raw)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers())
		for i, raw := range raws {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				s.process(ctx, logger, t, i, raw)
				return nil
			})
		}
		_ = g.Wait()
	}

	slices.SortFunc(stats.Failures, func(a, b domain.RecordFailure) int {
		return a.Index - b.Index
	})
	for _, f := range stats.Failures {
		logger.Warn("failed to process set",
			"index", f.Index,
			"set", f.Identifier,
			"kind", f.Kind,
			"error", f.Message,
		)
	}

	stats.Duration = time.Since(startTime)

	// A cancellation that lands after the last record leaves nothing
	// unprocessed, so the run still counts as complete.
	if err := ctx.Err(); err != nil && stats.Unprocessed() > 0 {
		stats.Interrupted = true
		logger.Warn("sync interrupted", "stats", stats)
		return stats, fmt.Errorf("sync interrupted: %w", err)
	}

	if err := s.updateSyncState(context.WithoutCancel(ctx), stats); err != nil {
		logger.Error("failed to update sync state", "error", err)
	}

	logger.Info("sync completed", "stats", stats)

	return stats, nil
}

func (s *SyncService) workers() int {
	if s.config.Workers < 1 {
		return 1
	}
	return s.config.Workers
}

func (s *SyncService) process(ctx context.Context, logger *slog.Logger, t *tally, index int, raw domain.RawSet) {
	identifier := domain.RecordIdentifier(raw)

	set, err := domain.NewSet(domain.NormalizeSet(raw))
	if err != nil {
		t.failed(index, identifier, err)
		return
	}

	saved, isNew, err := s.saveSet(ctx, set)
	if err != nil {
		// Records cut off by cancellation stay unprocessed rather than failed.
		if ctx.Err() != nil && isContextErr(err) {
			return
		}
		t.failed(index, identifier, err)
		return
	}
	t.saved(isNew)

	if s.publisher == nil {
		return
	}
	err = s.publisher.Publish(ctx, saved, isNew)
	if err != nil {
		logger.Warn("failed to publish set event", "set", saved.ID(), "error", err)
	}
	t.published(err)
}

// saveSet decides created versus updated by looking the id up first. The
// lookup and the upsert run under a per-id lock so concurrent workers cannot
// both report the same id as created.
func (s *SyncService) saveSet(ctx context.Context, set *domain.Set) (*domain.Set, bool, error) {
	unlock := s.locks.Lock(set.ID())
	defer unlock()

	isNew := false
	if _, err := s.sets.FindByID(ctx, set.ID()); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("find set: %w", err)
		}
		isNew = true
	}

	saved, err := s.sets.Upsert(ctx, set)
	if err != nil {
		return nil, false, fmt.Errorf("upsert set: %w", err)
	}
	return saved, isNew, nil
}

func (s *SyncService) updateSyncState(ctx context.Context, stats *domain.SyncStats) error {
	if s.syncState == nil {
		return nil
	}

	state, err := s.syncState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastSyncedAt = time.Now()
	state.TotalSynced += int64(stats.Succeeded())
	state.LastFailed = int64(stats.Failed)

	return s.syncState.Update(ctx, state)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
