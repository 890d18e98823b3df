// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package drag

import (
	"context"
	"sync"
	"time"
)

// Point is a pointer position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a container's visible bounds.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Viewport is the scrollable container a card is dragged over.
type Viewport interface {
	Bounds() Rect
	ScrollBy(dx, dy float64)
}

// ScrollConfig shapes the edge autoscroll.
type ScrollConfig struct {
	// EdgeBand is the width of the band along each edge that triggers
	// scrolling.
	EdgeBand float64
	MinStep  float64
	MaxStep  float64
	// Frame is the interval between scroll steps.
	Frame time.Duration
}

// DefaultScrollConfig returns the settings used by the board view.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{EdgeBand: 80, MinStep: 2, MaxStep: 18, Frame: 16 * time.Millisecond}
}

// axisDelta returns the scroll step along one axis. It is zero in the safe
// zone and grows linearly from MinStep at the inner edge of a band to MaxStep
// at the container boundary.
func (c ScrollConfig) axisDelta(pos, lo, hi float64) float64 {
	if c.EdgeBand <= 0 || hi <= lo {
		return 0
	}
	band := min(c.EdgeBand, (hi-lo)/2)
	step := func(dist float64) float64 {
		t := 1 - max(dist, 0)/band
		return c.MinStep + (c.MaxStep-c.MinStep)*min(t, 1)
	}
	switch {
	case pos < lo+band:
		return -step(pos - lo)
	case pos > hi-band:
		return step(hi - pos)
	}
	return 0
}

// Delta returns the scroll vector for pointer p over bounds r.
func (c ScrollConfig) Delta(p Point, r Rect) (dx, dy float64) {
	return c.axisDelta(p.X, r.Left, r.Right), c.axisDelta(p.Y, r.Top, r.Bottom)
}

// autoScroller scrolls a viewport once per frame while a card drag is in
// progress.
type autoScroller struct {
	cfg ScrollConfig
	vp  Viewport

	mu      sync.Mutex
	pointer Point
	known   bool
}

func (a *autoScroller) move(p Point) {
	a.mu.Lock()
	a.pointer, a.known = p, true
	a.mu.Unlock()
}

func (a *autoScroller) frame() {
	a.mu.Lock()
	p, known := a.pointer, a.known
	a.mu.Unlock()
	if !known {
		return
	}
	if dx, dy := a.cfg.Delta(p, a.vp.Bounds()); dx != 0 || dy != 0 {
		a.vp.ScrollBy(dx, dy)
	}
}

func (a *autoScroller) run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.frame()
		}
	}
}
