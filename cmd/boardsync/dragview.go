// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package main

import (
	"sync"
	"sync/atomic"

	"github.com/tomtom215/boardsync/internal/drag"
	"github.com/tomtom215/boardsync/internal/logging"
)

// shellViewport stands in for the board view the UI shell renders. The shell
// reports the view's bounds with each pointer move and applies the scroll
// the autoscroller accumulated since its previous report.
type shellViewport struct {
	mu     sync.Mutex
	bounds drag.Rect
	dx, dy float64
}

var _ drag.Viewport = (*shellViewport)(nil)

func (v *shellViewport) Bounds() drag.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds
}

func (v *shellViewport) ScrollBy(dx, dy float64) {
	v.mu.Lock()
	v.dx += dx
	v.dy += dy
	v.mu.Unlock()
}

func (v *shellViewport) setBounds(r drag.Rect) {
	v.mu.Lock()
	v.bounds = r
	v.mu.Unlock()
}

// take returns the pending scroll and resets it.
func (v *shellViewport) take() (dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	dx, dy = v.dx, v.dy
	v.dx, v.dy = 0, 0
	return dx, dy
}

// remountSignal counts forced drag finishes. The shell rebuilds its drag
// context whenever the generation it last saw changes.
type remountSignal struct {
	n atomic.Uint64
}

func (r *remountSignal) bump() {
	gen := r.n.Add(1)
	logging.Info().Uint64("generation", gen).Msg("Drag context remount requested")
}

func (r *remountSignal) generation() uint64 {
	return r.n.Load()
}
