package domain

import (
	"log/slog"
	"time"
)

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	RunID         string
	SourceID      string
	Fetched       int
	Created       int
	Updated       int
	Failed        int
	Failures      []RecordFailure
	Published     int
	PublishErrors int
	Interrupted   bool
	Duration      time.Duration
}

// RecordFailure describes one raw record that could not be stored.
type RecordFailure struct {
	Index      int
	Identifier string
	Message    string
	Kind       ErrorKind
}

// Succeeded is the number of sets that were created or updated.
func (s *SyncStats) Succeeded() int {
	return s.Created + s.Updated
}

// Unprocessed is the number of fetched records the run never reached.
func (s *SyncStats) Unprocessed() int {
	return s.Fetched - s.Created - s.Updated - s.Failed
}

func (s *SyncStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("fetched", s.Fetched),
		slog.Int("created", s.Created),
		slog.Int("updated", s.Updated),
		slog.Int("failed", s.Failed),
		slog.Int("published", s.Published),
		slog.Int("publish_errors", s.PublishErrors),
		slog.Int("unprocessed", s.Unprocessed()),
		slog.Bool("interrupted", s.Interrupted),
		slog.Duration("duration", s.Duration),
	)
}

type SyncState struct {
	SourceID     string    `db:"source_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	TotalSynced  int64     `db:"total_synced"`
	LastFailed   int64     `db:"last_failed"`
}
