//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"set_syncer/internal/domain"
	"set_syncer/internal/testutil"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := Connect(s.ctx, connStr, true)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM sets")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM sync_state")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) count() int {
	var n int
	s.Require().NoError(s.db.GetContext(s.ctx, &n, "SELECT COUNT(*) FROM sets"))
	return n
}

func (s *PostgresIntegrationSuite) TestSetStore_CreateAndFind() {
	store := NewSetStore(s.db)
	set := testutil.MustSet(testutil.Fields("s1", "abc"))

	created, err := store.Create(s.ctx, set)
	s.NoError(err)
	s.True(set.Equal(created))

	found, err := store.FindByID(s.ctx, "s1")
	s.NoError(err)
	s.True(set.Equal(found))
}

func (s *PostgresIntegrationSuite) TestSetStore_FindMissing() {
	store := NewSetStore(s.db)

	_, err := store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestSetStore_CreateDuplicateID() {
	store := NewSetStore(s.db)
	_, err := store.Create(s.ctx, testutil.MustSet(testutil.Fields("s1", "abc")))
	s.Require().NoError(err)

	_, err = store.Create(s.ctx, testutil.MustSet(testutil.Fields("s1", "xyz")))

	var cerr *domain.ConflictError
	s.Require().True(errors.As(err, &cerr))
	s.Equal("sets_pkey", cerr.Constraint)
	s.Equal(1, s.count())
}

func (s *PostgresIntegrationSuite) TestSetStore_CreateDuplicateCode() {
	store := NewSetStore(s.db)
	_, err := store.Create(s.ctx, testutil.MustSet(testutil.Fields("s1", "abc")))
	s.Require().NoError(err)

	_, err = store.Create(s.ctx, testutil.MustSet(testutil.Fields("s2", "abc")))

	var cerr *domain.ConflictError
	s.Require().True(errors.As(err, &cerr))
	s.Equal("sets_code_key", cerr.Constraint)
}

func (s *PostgresIntegrationSuite) TestSetStore_UpsertInsertThenOverwrite() {
	store := NewSetStore(s.db)
	set := testutil.MustSet(testutil.Fields("s1", "abc"))

	_, err := store.Upsert(s.ctx, set)
	s.Require().NoError(err)

	updated, err := set.With(func(f *domain.SetFields) {
		f.CardCount = 300
		f.Name = "Alpha Revised"
		f.ReleasedAt = nil
		f.Digital = true
	})
	s.Require().NoError(err)

	got, err := store.Upsert(s.ctx, updated)
	s.Require().NoError(err)
	s.True(updated.Equal(got))
	s.Equal(1, s.count())

	found, err := store.FindByID(s.ctx, "s1")
	s.NoError(err)
	s.Equal(300, found.CardCount())
	s.Nil(found.ReleasedAt())
	s.True(found.Digital())
}

func (s *PostgresIntegrationSuite) TestSetStore_UpsertIdempotent() {
	store := NewSetStore(s.db)
	set := testutil.MustSet(testutil.Fields("s1", "abc"))

	for i := 0; i < 3; i++ {
		_, err := store.Upsert(s.ctx, set)
		s.Require().NoError(err)
	}

	s.Equal(1, s.count())
	found, err := store.FindByID(s.ctx, "s1")
	s.NoError(err)
	s.True(set.Equal(found))
}

func (s *PostgresIntegrationSuite) TestSetStore_UpsertCodeClash() {
	store := NewSetStore(s.db)
	_, err := store.Upsert(s.ctx, testutil.MustSet(testutil.Fields("s1", "abc")))
	s.Require().NoError(err)

	_, err = store.Upsert(s.ctx, testutil.MustSet(testutil.Fields("s2", "abc")))

	s.ErrorIs(err, domain.ErrConflict)
	s.Equal(1, s.count())
}

func (s *PostgresIntegrationSuite) TestSetStore_ConcurrentUpsertSameID() {
	store := NewSetStore(s.db)
	base := testutil.MustSet(testutil.Fields("s1", "abc"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			set, err := base.With(func(f *domain.SetFields) { f.CardCount = n })
			s.NoError(err)
			_, err = store.Upsert(s.ctx, set)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	s.Equal(1, s.count())
}

func (s *PostgresIntegrationSuite) TestSetStore_GetAllOrderedByCode() {
	store := NewSetStore(s.db)
	for _, f := range []domain.SetFields{
		testutil.Fields("s3", "zen"),
		testutil.Fields("s1", "abc"),
		testutil.Fields("s2", "mh3"),
	} {
		_, err := store.Create(s.ctx, testutil.MustSet(f))
		s.Require().NoError(err)
	}

	all, err := store.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("abc", all[0].Code())
	s.Equal("mh3", all[1].Code())
	s.Equal("zen", all[2].Code())
}

func (s *PostgresIntegrationSuite) TestSyncStateStore_GetNew() {
	store := NewSyncStateStore(s.db)

	state, err := store.Get(s.ctx, "new-source")
	s.NoError(err)
	s.NotNil(state)
	s.Equal("new-source", state.SourceID)
	s.True(state.LastSyncedAt.IsZero())
	s.Equal(int64(0), state.TotalSynced)
}

func (s *PostgresIntegrationSuite) TestSyncStateStore_UpdateAndGet() {
	store := NewSyncStateStore(s.db)
	now := time.Now().Truncate(time.Microsecond)

	state := &domain.SyncState{
		SourceID:     "test-source",
		LastSyncedAt: now,
		TotalSynced:  100,
		LastFailed:   2,
	}
	err := store.Update(s.ctx, state)
	s.NoError(err)

	state.TotalSynced = 150
	state.LastFailed = 0
	err = store.Update(s.ctx, state)
	s.NoError(err)

	retrieved, err := store.Get(s.ctx, "test-source")
	s.NoError(err)
	s.Equal("test-source", retrieved.SourceID)
	s.Equal(int64(150), retrieved.TotalSynced)
	s.Equal(int64(0), retrieved.LastFailed)
	s.WithinDuration(now, retrieved.LastSyncedAt, time.Second)
}
