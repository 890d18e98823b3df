// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package coerce extracts typed values from untyped wire payloads.
//
// Inbound websocket payloads are decoded into `any` before they are trusted,
// so every field access goes through these guards. None of them panic: a
// missing or wrongly typed field is reported through the ok result and the
// caller decides to ignore the message.
package coerce

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Record is a decoded JSON object.
type Record = map[string]any

// AsRecord reports whether v is a JSON object.
func AsRecord(v any) (Record, bool) {
	r, ok := v.(map[string]any)
	if !ok || r == nil {
		return nil, false
	}
	return r, true
}

// IsRecord reports whether v is a non-nil JSON object.
func IsRecord(v any) bool {
	_, ok := AsRecord(v)
	return ok
}

// AsNumber reports whether v is a finite JSON number.
// json.Number and Go numeric types are accepted so values built locally
// (before a round trip through the encoder) pass the same guard.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
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

// IsNumber reports whether v is a finite number.
func IsNumber(v any) bool {
	_, ok := AsNumber(v)
	return ok
}

// AsInt64 reports whether v is a number with no fractional part.
func AsInt64(v any) (int64, bool) {
	f, ok := AsNumber(v)
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if !ok || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsInt is AsInt64 narrowed to int.
func AsInt(v any) (int, bool) {
	n, ok := AsInt64(v)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}

// AsString reports whether v is a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsBool reports whether v is a bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsSlice reports whether v is a JSON array.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// Field returns r[key] when r is a record.
func Field(v any, key string) (any, bool) {
	r, ok := AsRecord(v)
	if !ok {
		return nil, false
	}
	f, ok := r[key]
	return f, ok
}

// IntField returns r[key] as an int64.
func IntField(v any, key string) (int64, bool) {
	f, ok := Field(v, key)
	if !ok {
		return 0, false
	}
	return AsInt64(f)
}

// StringField returns r[key] as a string.
func StringField(v any, key string) (string, bool) {
	f, ok := Field(v, key)
	if !ok {
		return "", false
	}
	return AsString(f)
}

// HasNumericID reports whether v is a record whose id is an integer.
func HasNumericID(v any) bool {
	_, ok := IntField(v, "id")
	return ok
}

// RefID reads a foreign-key style field that the backend may send either as a
// bare id or as a nested object with an id ("list": 3 or "list": {"id": 3}).
func RefID(v any, key string) (int64, bool) {
	f, ok := Field(v, key)
	if !ok {
		return 0, false
	}
	if id, ok := AsInt64(f); ok {
		return id, true
	}
	return IntField(f, "id")
}

// ParseID accepts numeric ids and their decimal string form.
func ParseID(v any) (int64, bool) {
	if n, ok := AsInt64(v); ok {
		return n, true
	}
	s, ok := AsString(v)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize converts any Go value into its untyped JSON form (records,
// slices, float64 numbers) by round-tripping it through the encoder.
// Values that are already untyped are returned unchanged.
func Normalize(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, float64, string, bool:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Into decodes an untyped value into a typed destination.
func Into(v any, dst any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
