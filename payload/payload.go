// Package payload provides get-or-default access into loosely typed
// webhook payloads.
//
// Pike13 webhook bodies are deeply nested JSON objects where almost every
// field is optional. Map wraps the decoded form and makes every lookup
// nil-safe: reading through a missing parent object yields the zero value
// instead of a panic, so transformers never need presence checks.
package payload

import (
	"fmt"
	"strconv"
)

// Map is a decoded JSON object. All read methods are safe on a nil Map.
type Map map[string]any

// Get returns the raw value for key and whether it was present.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Value returns the raw value for key, or nil when absent.
func (m Map) Value(key string) any {
	return m[key]
}

// String returns the value for key as a string, or "" when the value is
// absent or not a string.
func (m Map) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// StringOr returns the value for key as a string, or fallback when the
// value is absent, empty, or not a string.
func (m Map) StringOr(key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Bool returns the value for key as a bool, or false when absent.
func (m Map) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Number returns the value for key as a float64 and whether it was a
// JSON number. encoding/json decodes all numbers as float64.
func (m Map) Number(key string) (float64, bool) {
	n, ok := m[key].(float64)
	return n, ok
}

// Child returns the nested object under key, or nil when the value is
// absent or not an object. The nil result is itself readable.
func (m Map) Child(key string) Map {
	switch v := m[key].(type) {
	case map[string]any:
		return Map(v)
	case Map:
		return v
	default:
		return nil
	}
}

// List returns the array under key, or nil when the value is absent or
// not an array.
func (m Map) List(key string) []any {
	l, _ := m[key].([]any)
	return l
}

// FirstObject returns the first element of the array under key as a Map.
// It returns false when the array is absent, empty, or its first element
// is not an object.
func (m Map) FirstObject(key string) (Map, bool) {
	l := m.List(key)
	if len(l) == 0 {
		return nil, false
	}
	obj, ok := l[0].(map[string]any)
	if !ok {
		return nil, false
	}
	return Map(obj), true
}

// Stringify renders a scalar value as a string. JSON numbers render
// without a trailing ".0" so integer identifiers survive the float64
// decoding round trip ("42", not "42.0"). Nil renders as "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// StringifyOr renders v as a string, or fallback when v is nil or
// renders empty.
func StringifyOr(v any, fallback string) string {
	if s := Stringify(v); s != "" {
		return s
	}
	return fallback
}
