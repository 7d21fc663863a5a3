package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"set_syncer/internal/domain"
	"set_syncer/internal/storage"
)

// uniqueViolation is the SQLSTATE Postgres reports for primary key and
// unique constraint violations.
const uniqueViolation = "23505"

type SetStore struct {
	db *sqlx.DB
}

func NewSetStore(db *sqlx.DB) *SetStore {
	return &SetStore{db: db}
}

func (s *SetStore) FindByID(ctx context.Context, id string) (*domain.Set, error) {
	query := `SELECT ` + storage.SetColumns + ` FROM sets WHERE id = $1`

	var row storage.SetRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row.ToDomain()
}

func (s *SetStore) GetAll(ctx context.Context) ([]*domain.Set, error) {
	query := `SELECT ` + storage.SetColumns + ` FROM sets ORDER BY code`

	var rows []storage.SetRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return storage.ToDomainAll(rows)
}

func (s *SetStore) Create(ctx context.Context, set *domain.Set) (*domain.Set, error) {
	query := `
		INSERT INTO sets (` + storage.SetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + storage.SetColumns

	var row storage.SetRow
	if err := s.db.GetContext(ctx, &row, query, storage.SetArgs(set)...); err != nil {
		return nil, translate(set.ID(), err)
	}
	return row.ToDomain()
}

func (s *SetStore) Upsert(ctx context.Context, set *domain.Set) (*domain.Set, error) {
	query := `
		INSERT INTO sets (` + storage.SetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET` + storage.UpsertAssignments + `,
			updated_at = NOW()
		RETURNING ` + storage.SetColumns

	var row storage.SetRow
	if err := s.db.GetContext(ctx, &row, query, storage.SetArgs(set)...); err != nil {
		return nil, translate(set.ID(), err)
	}
	return row.ToDomain()
}

// translate maps unique violations to *domain.ConflictError and wraps
// everything else as a db error.
func translate(id string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &domain.ConflictError{ID: id, Constraint: pqErr.Constraint, Err: err}
	}
	return fmt.Errorf("db error: %w", err)
}
