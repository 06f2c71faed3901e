package wire

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// pick returns the first present, non-nil value among keys. Callers list the
// snake_case key first so it wins over the camelCase one.
func pick(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// first is pick for nullable fields: the first present key wins even when it
// holds null, so an explicit snake_case null is not overridden.
func first(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, v != nil
		}
	}
	return nil, false
}

func str(m map[string]any, keys ...string) string {
	v, ok := pick(m, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// number coerces JSON numbers and numeric strings. ok is false when the
// value is absent, null, an empty string or not numeric.
func number(m map[string]any, keys ...string) (float64, bool) {
	v, ok := pick(m, keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && !math.IsNaN(f)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func float(m map[string]any, keys ...string) float64 {
	f, _ := number(m, keys...)
	return f
}

func optFloat(m map[string]any, keys ...string) *float64 {
	v, ok := first(m, keys...)
	if !ok {
		return nil
	}
	f, ok := number(map[string]any{"v": v}, "v")
	if !ok {
		return nil
	}
	return &f
}

func id(m map[string]any, keys ...string) int64 {
	f, _ := number(m, keys...)
	return int64(f)
}

func optID(m map[string]any, keys ...string) *int64 {
	v, ok := first(m, keys...)
	if !ok {
		return nil
	}
	f, ok := number(map[string]any{"v": v}, "v")
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

// boolean accepts true/false, 0/1 and "0"/"1" (plus "true"/"false").
func boolean(m map[string]any, keys ...string) bool {
	v, ok := pick(m, keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s == "1" || s == "true"
	}
	f, ok := number(map[string]any{"v": v}, "v")
	return ok && f != 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC3339, SQLite's "2006-01-02 15:04:05[.ffffff]" and a
// bare date. Zone-less values are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func optTime(m map[string]any, keys ...string) *time.Time {
	t, ok := ParseTime(str(m, keys...))
	if !ok {
		return nil
	}
	return &t
}

func timeVal(m map[string]any, keys ...string) time.Time {
	t, _ := ParseTime(str(m, keys...))
	return t
}
