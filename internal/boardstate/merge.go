// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/tomtom215/boardsync/internal/coerce"
)

// overlay returns a new T built from cur with every field of patch replacing
// the stored value. A null in the patch never clears a stored collection.
// cur is not modified. Decoding into a fresh value keeps slices and pointers
// of the result independent of cur.
func overlay[T any](cur *T, patch coerce.Record) (*T, error) {
	norm, err := coerce.Normalize(cur)
	if err != nil {
		return nil, fmt.Errorf("encode current: %w", err)
	}
	base, ok := coerce.AsRecord(norm)
	if !ok {
		base = coerce.Record{}
	}
	merged := make(coerce.Record, len(base)+len(patch))
	maps.Copy(merged, base)
	for k, v := range patch {
		if _, isSlice := base[k].([]any); isSlice && v == nil {
			continue
		}
		merged[k] = v
	}

	next := new(T)
	if err := coerce.Into(merged, next); err != nil {
		return nil, fmt.Errorf("merge fields: %w", err)
	}
	return next, nil
}

// decodeNew builds a T from patch alone.
func decodeNew[T any](patch coerce.Record) (*T, error) {
	v := new(T)
	if err := coerce.Into(patch, v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// has reports whether patch carries a non-null key.
func has(patch coerce.Record, key string) bool {
	v, ok := patch[key]
	return ok && v != nil
}

func same[T any](a, b *T) bool {
	return reflect.DeepEqual(a, b)
}
