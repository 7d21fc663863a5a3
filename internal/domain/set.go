package domain

import (
	"encoding/json"
	"math"
	"strings"
)

// MaxCardCount is the largest card_count the INTEGER columns can hold.
const MaxCardCount = math.MaxInt32

// SetFields carries the raw values a Set is built from. It has no invariants
// of its own; NewSet is the only way to turn it into a Set.
type SetFields struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	URI           string  `json:"uri"`
	ReleasedAt    *string `json:"released_at"`
	SetType       string  `json:"set_type"`
	CardCount     int     `json:"card_count"`
	ParentSetCode *string `json:"parent_set_code"`
	Digital       bool    `json:"digital"`
	NonfoilOnly   bool    `json:"nonfoil_only"`
	FoilOnly      bool    `json:"foil_only"`
	IconSVGURI    *string `json:"icon_svg_uri"`
}

// Set is one published card set. A *Set is always valid: it can only be
// obtained from NewSet or With, and is never modified afterwards.
type Set struct {
	f SetFields
}

// NewSet validates fields and returns the set, or a *ValidationError naming
// the first offending field.
func NewSet(f SetFields) (*Set, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"id", &f.ID},
		{"code", &f.Code},
		{"name", &f.Name},
		{"uri", &f.URI},
		{"set_type", &f.SetType},
	}
	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			return nil, badParameter(r.name, "%s can't be empty", r.name)
		}
	}

	if f.CardCount < 0 {
		return nil, badParameter("card_count", "card_count can't be negative")
	}
	if f.CardCount > MaxCardCount {
		return nil, badParameter("card_count", "card_count can't exceed %d", MaxCardCount)
	}

	f.ReleasedAt = optional(f.ReleasedAt)
	f.ParentSetCode = optional(f.ParentSetCode)
	f.IconSVGURI = optional(f.IconSVGURI)

	return &Set{f: f}, nil
}

// With returns a new Set with mutate applied to a copy of the fields. The
// same validation as NewSet runs again, and the id may not change.
func (s *Set) With(mutate func(f *SetFields)) (*Set, error) {
	f := s.Fields()
	mutate(&f)
	if strings.TrimSpace(f.ID) != s.f.ID {
		return nil, badParameter("id", "id is immutable")
	}
	return NewSet(f)
}

// Fields returns a copy of the validated values.
func (s *Set) Fields() SetFields {
	f := s.f
	f.ReleasedAt = clone(f.ReleasedAt)
	f.ParentSetCode = clone(f.ParentSetCode)
	f.IconSVGURI = clone(f.IconSVGURI)
	return f
}

func (s *Set) ID() string      { return s.f.ID }
func (s *Set) Code() string    { return s.f.Code }
func (s *Set) Name() string    { return s.f.Name }
func (s *Set) URI() string     { return s.f.URI }
func (s *Set) SetType() string { return s.f.SetType }
func (s *Set) CardCount() int  { return s.f.CardCount }
func (s *Set) Digital() bool   { return s.f.Digital }

func (s *Set) NonfoilOnly() bool { return s.f.NonfoilOnly }
func (s *Set) FoilOnly() bool    { return s.f.FoilOnly }

func (s *Set) ReleasedAt() *string    { return clone(s.f.ReleasedAt) }
func (s *Set) ParentSetCode() *string { return clone(s.f.ParentSetCode) }
func (s *Set) IconSVGURI() *string    { return clone(s.f.IconSVGURI) }

// Equal reports whether both sets hold the same values.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	a, b := s.f, other.f
	return a.ID == b.ID &&
		a.Code == b.Code &&
		a.Name == b.Name &&
		a.URI == b.URI &&
		a.SetType == b.SetType &&
		a.CardCount == b.CardCount &&
		a.Digital == b.Digital &&
		a.NonfoilOnly == b.NonfoilOnly &&
		a.FoilOnly == b.FoilOnly &&
		equalOptional(a.ReleasedAt, b.ReleasedAt) &&
		equalOptional(a.ParentSetCode, b.ParentSetCode) &&
		equalOptional(a.IconSVGURI, b.IconSVGURI)
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.f)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var f SetFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	set, err := NewSet(f)
	if err != nil {
		return err
	}
	*s = *set
	return nil
}

// optional trims v and treats a blank value as absent.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func clone(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
