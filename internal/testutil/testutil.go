// Package testutil holds fixtures shared by package tests.
package testutil

import "set_syncer/internal/domain"

func Ptr[T any](v T) *T {
	return &v
}

// Fields returns a fully valid SetFields for id and code.
func Fields(id, code string) domain.SetFields {
	return domain.SetFields{
		ID:            id,
		Code:          code,
		Name:          "Set " + code,
		URI:           "https://api.scryfall.com/sets/" + id,
		ReleasedAt:    Ptr("2024-02-09"),
		SetType:       "expansion",
		CardCount:     250,
		ParentSetCode: nil,
		IconSVGURI:    Ptr("https://svgs.scryfall.io/sets/" + code + ".svg"),
	}
}

// MustSet builds a set from f and panics on invalid input.
func MustSet(f domain.SetFields) *domain.Set {
	s, err := domain.NewSet(f)
	if err != nil {
		panic(err)
	}
	return s
}

// Raw returns a raw payload with every required key present.
func Raw(id, code string, cardCount int) domain.RawSet {
	return domain.RawSet{
		"object":     "set",
		"id":         id,
		"code":       code,
		"name":       "Set " + code,
		"uri":        "https://api.scryfall.com/sets/" + id,
		"set_type":   "core",
		"card_count": cardCount,
	}
}
