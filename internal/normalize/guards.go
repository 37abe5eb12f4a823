// Package normalize turns loosely structured AI output into validated plan
// values. Bad list elements are dropped and the rest kept; an entity missing
// a required field is dropped whole; a plan whose required list ends up empty
// is rejected with a Normalization error.
package normalize

import (
	"encoding/json"
	"math"
	"strings"
)

type record = map[string]any

func asRecord(v any) (record, bool) {
	r, ok := v.(map[string]any)
	return r, ok && r != nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asNumber accepts finite numbers only. Booleans and numeric strings are
// not numbers.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asCount accepts non-negative whole numbers (sets, reps, seconds).
func asCount(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// requiredText returns r[key] when it is a string with visible content.
func requiredText(r record, key string) (string, bool) {
	s, ok := asString(r[key])
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func optionalText(r record, key string) string {
	s, _ := asString(r[key])
	return s
}

func optionalNumber(r record, key string) *float64 {
	f, ok := asNumber(r[key])
	if !ok {
		return nil
	}
	return &f
}
