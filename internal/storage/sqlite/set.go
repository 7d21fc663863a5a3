package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"set_syncer/internal/domain"
	"set_syncer/internal/storage"
)

type SetStore struct {
	db *sqlx.DB
}

func NewSetStore(db *sqlx.DB) *SetStore {
	return &SetStore{db: db}
}

func (s *SetStore) FindByID(ctx context.Context, id string) (*domain.Set, error) {
	query := `SELECT ` + storage.SetColumns + ` FROM sets WHERE id = ?`

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET` + storage.UpsertAssignments + `,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + storage.SetColumns

	var row storage.SetRow
	if err := s.db.GetContext(ctx, &row, query, storage.SetArgs(set)...); err != nil {
		return nil, translate(set.ID(), err)
	}
	return row.ToDomain()
}

// translate maps primary key and unique violations to *domain.ConflictError.
// SQLite names the failing column in the message ("UNIQUE constraint
// failed: sets.code"), which becomes the constraint.
func translate(id string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		constraint := sqliteErr.Error()
		if i := strings.LastIndex(constraint, ": "); i >= 0 {
			constraint = constraint[i+2:]
		}
		return &domain.ConflictError{ID: id, Constraint: constraint, Err: err}
	}
	return fmt.Errorf("db error: %w", err)
}
