package domain

import (
	"bytes"
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Canonical maps every "absent" representation to (nil, false) and unwraps
// pointers and sql.Null* wrappers for present values.
//
// Absent: nil, "", empty []byte, zero time.Time, NaN, nil pointers/maps/slices,
// and sql.Null* values with Valid == false.
func Canonical(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		if x == "" {
			return nil, false
		}
		return x, true
	case []byte:
		if len(x) == 0 {
			return nil, false
		}
		return x, true
	case time.Time:
		if x.IsZero() {
			return nil, false
		}
		return x, true
	case float64:
		if math.IsNaN(x) {
			return nil, false
		}
		return x, true
	case float32:
		if math.IsNaN(float64(x)) {
			return nil, false
		}
		return x, true
	case *string:
		if x == nil {
			return nil, false
		}
		return Canonical(*x)
	case *time.Time:
		if x == nil {
			return nil, false
		}
		return Canonical(*x)
	case sql.NullString:
		if !x.Valid {
			return nil, false
		}
		return Canonical(x.String)
	case sql.NullTime:
		if !x.Valid {
			return nil, false
		}
		return Canonical(x.Time)
	case sql.NullInt64:
		if !x.Valid {
			return nil, false
		}
		return x.Int64, true
	case sql.NullFloat64:
		if !x.Valid {
			return nil, false
		}
		return Canonical(x.Float64)
	case sql.NullBool:
		if !x.Valid {
			return nil, false
		}
		return x.Bool, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil, false
		}
	}
	return v, true
}

// IsAbsent reports whether v is a canonical null.
func IsAbsent(v any) bool {
	_, ok := Canonical(v)
	return !ok
}

// ValuesEqual compares two cell values after canonical normalization.
// Two absent values are equal. Present values must have the same dynamic
// type; time values compare by instant and byte slices by content.
func ValuesEqual(a, b any) bool {
	ca, okA := Canonical(a)
	cb, okB := Canonical(b)
	if !okA && !okB {
		return true
	}
	if okA != okB {
		return false
	}

	switch x := ca.(type) {
	case time.Time:
		y, ok := cb.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := cb.([]byte)
		return ok && bytes.Equal(x, y)
	}

	ta, tb := reflect.TypeOf(ca), reflect.TypeOf(cb)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return ca == cb
	}
	return reflect.DeepEqual(ca, cb)
}

// ParseInput converts user-typed text into the value stored for f.
// Empty input clears the field.
func ParseInput(f Field, raw string) (any, error) {
	switch f.Kind() {
	case KindDate:
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%s %q: use YYYY-MM-DD: %w", f, raw, ErrInvalidFieldValue)
		}
		return t, nil
	default:
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	}
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormalizeDate reduces a driver value for a date column to a calendar date at
// UTC midnight. Values that cannot be read as a date are returned unchanged.
func NormalizeDate(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return x
		}
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC)
	case []byte:
		return NormalizeDate(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return x
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
		}
		return x
	}
	return v
}

// NormalizeNewlines rewrites CRLF and lone CR line endings as LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// FormatValue renders a cell for display and for prefilling inputs.
// Absent values render as "".
func FormatValue(v any) string {
	cv, ok := Canonical(v)
	if !ok {
		return ""
	}
	switch x := cv.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(DateLayout)
		}
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(cv)
}
