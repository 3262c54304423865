package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRow is a record as read from storage. Column types are not consistent
// across rows: a date column may hold a spreadsheet serial in one row and an
// ISO string in the next.
type RawRow map[string]any

// Get returns the value stored under the first key present, trying each
// key in order. Lookups are exact first, then case-insensitive.
func (r RawRow) Get(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		for rk, v := range r {
			if v != nil && strings.EqualFold(rk, k) {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the value under the first present key rendered as a
// trimmed string, or "" when none is present.
func (r RawRow) String(keys ...string) string {
	v, ok := r.Get(keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(Stringify(v))
}

// Stringify renders a loosely typed storage value as text.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
