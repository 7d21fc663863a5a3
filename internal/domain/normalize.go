package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawSet is one untyped set object as received from the source.
type RawSet map[string]any

const unknownIdentifier = "unknown"

// NormalizeSet maps a raw payload onto SetFields. It never fails: missing
// required values become zero values and are rejected later by NewSet.
func NormalizeSet(raw RawSet) SetFields {
	return SetFields{
		ID:            coerceString(raw["id"]),
		Code:          coerceString(raw["code"]),
		Name:          coerceString(raw["name"]),
		URI:           coerceString(raw["uri"]),
		ReleasedAt:    coerceOptional(raw["released_at"]),
		SetType:       coerceString(raw["set_type"]),
		CardCount:     coerceInt(raw["card_count"]),
		ParentSetCode: coerceOptional(raw["parent_set_code"]),
		Digital:       coerceBool(raw["digital"]),
		NonfoilOnly:   coerceBool(raw["nonfoil_only"]),
		FoilOnly:      coerceBool(raw["foil_only"]),
		IconSVGURI:    coerceOptional(raw["icon_svg_uri"]),
	}
}

// RecordIdentifier names a raw payload in failure reports: its id, else its
// code, else "unknown".
func RecordIdentifier(raw RawSet) string {
	if id := strings.TrimSpace(coerceString(raw["id"])); id != "" {
		return id
	}
	if code := strings.TrimSpace(coerceString(raw["code"])); code != "" {
		return code
	}
	return unknownIdentifier
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	if _, ok := numeric(v); ok {
		return fmt.Sprint(v)
	}
	return ""
}

func coerceOptional(v any) *string {
	s := strings.TrimSpace(coerceString(v))
	if s == "" {
		return nil
	}
	return &s
}

func coerceInt(v any) int {
	switch t := v.(type) {
	case json.Number:
		return parseInt(t.String())
	case string:
		return parseInt(t)
	}
	if f, ok := numeric(v); ok {
		return saturate(f)
	}
	return 0
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return saturate(f)
	}
	return 0
}

// saturate truncates toward zero. Values beyond the int range stay at its
// bounds so NewSet can still reject them as out of range.
func saturate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// numeric reports the value of any Go integer or float kind.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		s := strings.TrimSpace(t)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s != "" && s != "0"
	}
	f, ok := numeric(v)
	return ok && f != 0
}
