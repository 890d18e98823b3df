// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import "github.com/tomtom215/boardsync/internal/models"

// positional describes how to read and renumber one kind of ordered sibling.
// When partitioned is set the inactive elements get their own 1..M sequence;
// otherwise they keep whatever order they had.
type positional[T any] struct {
	active      func(T) bool
	order       func(T) int
	setOrder    func(T, int)
	partitioned bool
}

var listPos = positional[*models.List]{
	active:   func(l *models.List) bool { return !l.IsArchived },
	order:    func(l *models.List) int { return l.Order },
	setOrder: func(l *models.List, o int) { l.Order = o },
}

var cardPos = positional[*models.Card]{
	active:      func(c *models.Card) bool { return !c.IsArchived },
	order:       func(c *models.Card) int { return c.Order },
	setOrder:    func(c *models.Card, o int) { c.Order = o },
	partitioned: true,
}

// renumber sets the order of the active elements of s to 1..N by position
// and reports whether any order value changed.
func (p positional[T]) renumber(s []T) bool {
	changed := false
	active, inactive := 0, 0
	for _, x := range s {
		var n int
		switch {
		case p.active(x):
			active++
			n = active
		case p.partitioned:
			inactive++
			n = inactive
		default:
			continue
		}
		if p.order(x) != n {
			p.setOrder(x, n)
			changed = true
		}
	}
	return changed
}

// count returns how many elements of s share x's partition.
func (p positional[T]) count(s []T, x T) int {
	want := p.active(x)
	n := 0
	for _, y := range s {
		if p.active(y) == want {
			n++
		}
	}
	return n
}

// insert places x so that it becomes the idx-th element of its partition
// (active or inactive). idx is clamped into range.
func (p positional[T]) insert(s []T, x T, idx int) []T {
	want := p.active(x)
	idx = clamp(idx, 0, p.count(s, x))

	pos := len(s)
	seen := 0
	for i, y := range s {
		if p.active(y) != want {
			continue
		}
		if seen == idx {
			pos = i
			break
		}
		seen++
		pos = i + 1
	}
	return splice(s, x, pos)
}

// reorder moves the element at index from so that it becomes the idx-th
// element of its partition. Elements of the other partition keep their
// slots; the partition's elements fill the remaining slots in their new
// sequence.
func (p positional[T]) reorder(s []T, from, idx int) []T {
	if from < 0 || from >= len(s) {
		return s
	}
	want := p.active(s[from])

	var part []T
	at := 0
	for i, x := range s {
		if p.active(x) == want {
			if i < from {
				at++
			}
			part = append(part, x)
		}
	}
	moved := part[at]
	part = append(part[:at:at], part[at+1:]...)
	part = splice(part, moved, clamp(idx, 0, len(part)))

	out := make([]T, len(s))
	k := 0
	for i, x := range s {
		if p.active(x) == want {
			out[i] = part[k]
			k++
		} else {
			out[i] = x
		}
	}
	return out
}

func splice[T any](s []T, x T, at int) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, x)
	return append(out, s[at:]...)
}

func remove[T any](s []T, at int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:at]...)
	return append(out, s[at+1:]...)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
