// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package drag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu    sync.Mutex
	lists []ListMove
	cards []CardMove
	err   error
}

func (h *recordingHandler) MoveList(_ context.Context, m ListMove) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lists = append(h.lists, m)
	return h.err
}

func (h *recordingHandler) MoveCard(_ context.Context, m CardMove) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cards = append(h.cards, m)
	return h.err
}

// manualTimers replaces time.AfterFunc so tests fire timers explicitly.
type manualTimers struct {
	fns     []func()
	stopped []bool
}

func (m *manualTimers) install(e *Engine) {
	e.afterFunc = func(_ time.Duration, f func()) func() bool {
		i := len(m.fns)
		m.fns = append(m.fns, f)
		m.stopped = append(m.stopped, false)
		return func() bool {
			was := !m.stopped[i]
			m.stopped[i] = true
			return was
		}
	}
}

func (m *manualTimers) fire(i int) {
	if !m.stopped[i] {
		m.stopped[i] = true
		m.fns[i]()
	}
}

func TestEngine_EndDispatches(t *testing.T) {
	h := &recordingHandler{}
	e := NewEngine(h, Options{})
	ctx := context.Background()

	e.Start(ctx, Start{DraggableID: "card-3", Type: TypeCard, Source: Location{DroppableID: "list-1", Index: 0}})
	if !e.Active() {
		t.Fatal("drag should be active after Start")
	}
	err := e.End(ctx, DropResult{
		DraggableID: "card-3", Type: TypeCard,
		Source:      Location{DroppableID: "list-1", Index: 0},
		Destination: &Location{DroppableID: "list-2", Index: 4},
	})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if e.Active() {
		t.Error("drag still active after End")
	}
	if len(h.cards) != 1 || h.cards[0] != (CardMove{CardID: 3, FromListID: 1, ToListID: 2, From: 0, To: 4}) {
		t.Errorf("cards = %+v", h.cards)
	}
}

func TestEngine_NoOpDrop(t *testing.T) {
	h := &recordingHandler{}
	e := NewEngine(h, Options{})
	src := Location{DroppableID: "board", Index: 1}
	if err := e.End(context.Background(), DropResult{DraggableID: "list-1", Type: TypeList, Source: src, Destination: &src}); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(h.lists) != 0 {
		t.Error("no-op drop issued a move")
	}
}

func TestEngine_HandlerError(t *testing.T) {
	h := &recordingHandler{err: errors.New("offline")}
	e := NewEngine(h, Options{})
	err := e.End(context.Background(), DropResult{
		DraggableID: "list-1", Type: TypeList,
		Source:      Location{DroppableID: "board", Index: 0},
		Destination: &Location{DroppableID: "board", Index: 1},
	})
	if err == nil || !errors.Is(err, h.err) {
		t.Errorf("err = %v, want wrapped handler error", err)
	}
}

func TestEngine_LostEndRecovery(t *testing.T) {
	h := &recordingHandler{}
	remounts := 0
	e := NewEngine(h, Options{Remount: func() { remounts++ }})
	timers := &manualTimers{}
	timers.install(e)
	ctx := context.Background()

	e.Start(ctx, Start{DraggableID: "list-7", Type: TypeList, Source: Location{DroppableID: "board", Index: 3}})
	e.Update(Update{DraggableID: "list-7", Destination: &Location{DroppableID: "board", Index: 1}})
	e.Update(Update{DraggableID: "other", Destination: &Location{DroppableID: "board", Index: 0}})
	e.PointerUp()
	e.PointerUp()
	if len(timers.fns) != 1 {
		t.Fatalf("armed %d recovery timers, want 1", len(timers.fns))
	}

	timers.fire(0)
	if e.Active() {
		t.Error("drag still active after forced finish")
	}
	if len(h.lists) != 1 || h.lists[0] != (ListMove{ListID: 7, From: 3, To: 1}) {
		t.Errorf("lists = %+v", h.lists)
	}
	if remounts != 1 {
		t.Errorf("remounts = %d, want 1", remounts)
	}

	// The library's own end event arriving late must not move the list again.
	if err := e.End(ctx, DropResult{
		DraggableID: "list-7", Type: TypeList,
		Source:      Location{DroppableID: "board", Index: 3},
		Destination: &Location{DroppableID: "board", Index: 1},
	}); err != nil {
		t.Fatalf("late End: %v", err)
	}
	if len(h.lists) != 1 {
		t.Errorf("late end event moved the list again: %+v", h.lists)
	}
}

func TestEngine_EndCancelsRecovery(t *testing.T) {
	h := &recordingHandler{}
	remounts := 0
	e := NewEngine(h, Options{Remount: func() { remounts++ }})
	timers := &manualTimers{}
	timers.install(e)
	ctx := context.Background()

	e.Start(ctx, Start{DraggableID: "list-7", Type: TypeList, Source: Location{DroppableID: "board", Index: 0}})
	e.PointerUp()
	_ = e.End(ctx, DropResult{
		DraggableID: "list-7", Type: TypeList,
		Source:      Location{DroppableID: "board", Index: 0},
		Destination: &Location{DroppableID: "board", Index: 2},
	})
	timers.fire(0)

	if len(h.lists) != 1 || remounts != 0 {
		t.Errorf("lists=%+v remounts=%d, want one move and no remount", h.lists, remounts)
	}
}

func TestEngine_CardDragsDoNotArmRecovery(t *testing.T) {
	e := NewEngine(&recordingHandler{}, Options{})
	timers := &manualTimers{}
	timers.install(e)

	e.Start(context.Background(), Start{DraggableID: "card-1", Type: TypeCard, Source: Location{DroppableID: "list-1"}})
	e.PointerUp()
	if len(timers.fns) != 0 {
		t.Error("card drag armed lost-end recovery")
	}
}

func TestEngine_RecoveryWithoutDestination(t *testing.T) {
	h := &recordingHandler{}
	e := NewEngine(h, Options{})
	timers := &manualTimers{}
	timers.install(e)

	e.Start(context.Background(), Start{DraggableID: "list-2", Type: TypeList, Source: Location{DroppableID: "board", Index: 0}})
	e.Update(Update{DraggableID: "list-2", Destination: nil})
	e.PointerUp()
	timers.fire(0)
	if len(h.lists) != 0 {
		t.Error("drag that ended outside the board issued a move")
	}
}

func TestEngine_AutoscrollDuringCardDrag(t *testing.T) {
	vp := &fakeViewport{bounds: Rect{Right: 300, Bottom: 400}}
	e := NewEngine(&recordingHandler{}, Options{
		Viewport: vp,
		Scroll:   ScrollConfig{EdgeBand: 80, MinStep: 2, MaxStep: 18, Frame: time.Millisecond},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.Start(ctx, Start{DraggableID: "card-1", Type: TypeCard, Source: Location{DroppableID: "list-1"}})
	e.PointerMove(Point{X: 150, Y: 399})

	deadline := time.Now().Add(2 * time.Second)
	for {
		vp.mu.Lock()
		calls := vp.calls
		vp.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("viewport was never scrolled")
		}
		time.Sleep(2 * time.Millisecond)
	}

	_ = e.End(ctx, DropResult{DraggableID: "card-1", Type: TypeCard, Source: Location{DroppableID: "list-1"}})
	time.Sleep(10 * time.Millisecond)
	vp.mu.Lock()
	after := vp.calls
	vp.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if vp.calls != after {
		t.Errorf("autoscroll kept running after End: %d -> %d", after, vp.calls)
	}
}
