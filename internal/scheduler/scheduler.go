package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"set_syncer/internal/config"
	"set_syncer/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context) (*domain.SyncStats, error)
}

// Scheduler runs the syncer on a fixed interval. Each run gets its own
// deadline, and a run that fails before processing any record is retried
// with exponential backoff.
type Scheduler struct {
	syncer Syncer
	cfg    config.SyncConfig
	logger *slog.Logger
}

func NewScheduler(syncer Syncer, cfg config.SyncConfig, logger *slog.Logger) *Scheduler {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Scheduler{
		syncer: syncer,
		cfg:    cfg,
		logger: logger,
	}
}

// Start runs one sync immediately and then one per interval until ctx is
// done. It always returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.cfg.Interval)

	s.runSync(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("sync failed", "error", err)
	}
}

// RunOnce performs a single sync under the configured timeout. Fatal
// failures are retried up to Retry.MaxAttempts times; runs that processed
// records, including interrupted ones, are returned as they are.
func (s *Scheduler) RunOnce(ctx context.Context) (*domain.SyncStats, error) {
	var err error

	for attempt := 1; attempt <= s.cfg.Retry.MaxAttempts; attempt++ {
		var stats *domain.SyncStats
		stats, err = s.syncOnce(ctx)
		if err == nil || stats != nil || ctx.Err() != nil {
			return stats, err
		}

		if attempt == s.cfg.Retry.MaxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("sync failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if s.cfg.Retry.MaxAttempts == 1 {
		return nil, err
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.cfg.Retry.MaxAttempts, err)
}

func (s *Scheduler) syncOnce(ctx context.Context) (*domain.SyncStats, error) {
	if s.cfg.Timeout <= 0 {
		return s.syncer.Sync(ctx)
	}

	syncCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	stats, err := s.syncer.Sync(syncCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		s.logger.Warn("sync hit its timeout", "timeout", s.cfg.Timeout)
	}
	return stats, err
}

func (s *Scheduler) calculateBackoff(attempt int) time.Duration {
	backoff := s.cfg.Retry.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if s.cfg.Retry.MaxBackoff > 0 && backoff > s.cfg.Retry.MaxBackoff {
		backoff = s.cfg.Retry.MaxBackoff
	}
	return backoff
}
