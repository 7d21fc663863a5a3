package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"set_syncer/internal/domain"
	"set_syncer/internal/testutil"
)

func TestNewSet_Valid(t *testing.T) {
	f := testutil.Fields("s1", "abc")
	f.Name = "  Alpha  "

	set, err := domain.NewSet(f)
	require.NoError(t, err)

	assert.Equal(t, "s1", set.ID())
	assert.Equal(t, "abc", set.Code())
	assert.Equal(t, "Alpha", set.Name())
	assert.Equal(t, 250, set.CardCount())
	assert.Equal(t, "2024-02-09", *set.ReleasedAt())
	assert.Nil(t, set.ParentSetCode())
	assert.False(t, set.Digital())
}

func TestNewSet_RequiredFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(f *domain.SetFields)
	}{
		{"id", func(f *domain.SetFields) { f.ID = "" }},
		{"code", func(f *domain.SetFields) { f.Code = "   " }},
		{"name", func(f *domain.SetFields) { f.Name = "\t" }},
		{"uri", func(f *domain.SetFields) { f.URI = "" }},
		{"set_type", func(f *domain.SetFields) { f.SetType = "\n " }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := testutil.Fields("s1", "abc")
			tt.mutate(&f)

			set, err := domain.NewSet(f)
			require.Error(t, err)
			assert.Nil(t, set)
			assert.True(t, errors.Is(err, domain.ErrBadParameter))
			assert.Equal(t, domain.KindBadParameter, domain.KindOf(err))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.field+" can't be empty", verr.Message)
		})
	}
}

func TestNewSet_NegativeCardCount(t *testing.T) {
	f := testutil.Fields("s1", "abc")
	f.CardCount = -1

	_, err := domain.NewSet(f)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "card_count", verr.Field)
	assert.Equal(t, "card_count can't be negative", err.Error())
}

func TestNewSet_CardCountOutOfRange(t *testing.T) {
	f := domain.NormalizeSet(domain.RawSet{
		"id":         "s1",
		"code":       "abc",
		"name":       "Alpha",
		"uri":        "https://example.test/sets/s1",
		"set_type":   "core",
		"card_count": json.Number("5000000000"),
	})

	_, err := domain.NewSet(f)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "card_count", verr.Field)
	assert.ErrorIs(t, err, domain.ErrBadParameter)

	f.CardCount = domain.MaxCardCount
	set, err := domain.NewSet(f)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxCardCount, set.CardCount())
}

func TestNewSet_ZeroCardCountAllowed(t *testing.T) {
	f := testutil.Fields("s1", "abc")
	f.CardCount = 0

	set, err := domain.NewSet(f)
	require.NoError(t, err)
	assert.Equal(t, 0, set.CardCount())
}

func TestNewSet_BlankOptionalBecomesAbsent(t *testing.T) {
	f := testutil.Fields("s1", "abc")
	f.ReleasedAt = testutil.Ptr("  ")
	f.ParentSetCode = testutil.Ptr("")

	set, err := domain.NewSet(f)
	require.NoError(t, err)
	assert.Nil(t, set.ReleasedAt())
	assert.Nil(t, set.ParentSetCode())
}

func TestSet_WithReplacesWithoutMutating(t *testing.T) {
	orig := testutil.MustSet(testutil.Fields("s1", "abc"))

	updated, err := orig.With(func(f *domain.SetFields) { f.CardCount = 300 })
	require.NoError(t, err)

	assert.Equal(t, 300, updated.CardCount())
	assert.Equal(t, 250, orig.CardCount())
	assert.False(t, orig.Equal(updated))
}

func TestSet_WithRevalidates(t *testing.T) {
	orig := testutil.MustSet(testutil.Fields("s1", "abc"))

	_, err := orig.With(func(f *domain.SetFields) { f.Name = "" })
	assert.ErrorIs(t, err, domain.ErrBadParameter)

	_, err = orig.With(func(f *domain.SetFields) { f.CardCount = -5 })
	assert.ErrorIs(t, err, domain.ErrBadParameter)
}

func TestSet_WithRejectsIDChange(t *testing.T) {
	orig := testutil.MustSet(testutil.Fields("s1", "abc"))

	_, err := orig.With(func(f *domain.SetFields) { f.ID = "s2" })

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "id", verr.Field)
	assert.Equal(t, "id is immutable", verr.Message)
}

func TestSet_AccessorsReturnCopies(t *testing.T) {
	set := testutil.MustSet(testutil.Fields("s1", "abc"))

	*set.ReleasedAt() = "1999-01-01"
	f := set.Fields()
	*f.IconSVGURI = "changed"

	assert.Equal(t, "2024-02-09", *set.ReleasedAt())
	assert.NotEqual(t, "changed", *set.IconSVGURI())
}

func TestSet_JSON(t *testing.T) {
	set := testutil.MustSet(testutil.Fields("s1", "abc"))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "s1",
		"code": "abc",
		"name": "Set abc",
		"uri": "https://api.scryfall.com/sets/s1",
		"released_at": "2024-02-09",
		"set_type": "expansion",
		"card_count": 250,
		"parent_set_code": null,
		"digital": false,
		"nonfoil_only": false,
		"foil_only": false,
		"icon_svg_uri": "https://svgs.scryfall.io/sets/abc.svg"
	}`, string(data))

	var decoded domain.Set
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, set.Equal(&decoded))

	err = json.Unmarshal([]byte(`{"id":"s1","code":""}`), &decoded)
	assert.ErrorIs(t, err, domain.ErrBadParameter)
}

func TestErrorKinds(t *testing.T) {
	conflict := &domain.ConflictError{ID: "s1", Constraint: "sets_code_key", Err: errors.New("duplicate key")}
	transport := &domain.TransportError{Op: "fetch sets", StatusCode: 503}

	assert.ErrorIs(t, conflict, domain.ErrConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(conflict))
	assert.Contains(t, conflict.Error(), "sets_code_key")

	assert.ErrorIs(t, transport, domain.ErrTransport)
	assert.Equal(t, domain.KindTransport, domain.KindOf(transport))
	assert.Equal(t, "fetch sets: unexpected status 503", transport.Error())

	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(errors.New("plain")))
}
