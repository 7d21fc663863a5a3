// Package storage holds the row mapping shared by the SQL set stores.
package storage

import (
	"database/sql"
	"fmt"

	"set_syncer/internal/domain"
)

// SetColumns lists the sets columns in the order SetArgs binds them.
const SetColumns = `id, code, name, uri, released_at, set_type, card_count,
	parent_set_code, digital, nonfoil_only, foil_only, icon_svg_uri`

// UpsertAssignments overwrites every stored field from the excluded row.
// Both Postgres and SQLite accept it after ON CONFLICT (id) DO UPDATE SET.
const UpsertAssignments = `
			code = excluded.code,
			name = excluded.name,
			uri = excluded.uri,
			released_at = excluded.released_at,
			set_type = excluded.set_type,
			card_count = excluded.card_count,
			parent_set_code = excluded.parent_set_code,
			digital = excluded.digital,
			nonfoil_only = excluded.nonfoil_only,
			foil_only = excluded.foil_only,
			icon_svg_uri = excluded.icon_svg_uri`

type SetRow struct {
	ID            string         `db:"id"`
	Code          string         `db:"code"`
	Name          string         `db:"name"`
	URI           string         `db:"uri"`
	ReleasedAt    sql.NullString `db:"released_at"`
	SetType       string         `db:"set_type"`
	CardCount     int            `db:"card_count"`
	ParentSetCode sql.NullString `db:"parent_set_code"`
	Digital       bool           `db:"digital"`
	NonfoilOnly   bool           `db:"nonfoil_only"`
	FoilOnly      bool           `db:"foil_only"`
	IconSVGURI    sql.NullString `db:"icon_svg_uri"`
}

// ToDomain rebuilds the set through domain.NewSet so a stored row that no
// longer satisfies the invariants surfaces as an error.
func (r SetRow) ToDomain() (*domain.Set, error) {
	set, err := domain.NewSet(domain.SetFields{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		URI:           r.URI,
		ReleasedAt:    nullable(r.ReleasedAt),
		SetType:       r.SetType,
		CardCount:     r.CardCount,
		ParentSetCode: nullable(r.ParentSetCode),
		Digital:       r.Digital,
		NonfoilOnly:   r.NonfoilOnly,
		FoilOnly:      r.FoilOnly,
		IconSVGURI:    nullable(r.IconSVGURI),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid stored set %q: %w", r.ID, err)
	}
	return set, nil
}

// ToDomainAll converts rows in order, stopping at the first invalid one.
func ToDomainAll(rows []SetRow) ([]*domain.Set, error) {
	sets := make([]*domain.Set, 0, len(rows))
	for _, row := range rows {
		set, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// SetArgs returns the bind arguments matching SetColumns.
func SetArgs(set *domain.Set) []any {
	return []any{
		set.ID(),
		set.Code(),
		set.Name(),
		set.URI(),
		set.ReleasedAt(),
		set.SetType(),
		set.CardCount(),
		set.ParentSetCode(),
		set.Digital(),
		set.NonfoilOnly(),
		set.FoilOnly(),
		set.IconSVGURI(),
	}
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
