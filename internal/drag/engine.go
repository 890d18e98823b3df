// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package drag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
)

// Handler performs the moves a drop resolves to.
type Handler interface {
	MoveList(ctx context.Context, m ListMove) error
	MoveCard(ctx context.Context, m CardMove) error
}

// Start is reported when the user picks an item up.
type Start struct {
	DraggableID string   `json:"draggableId"`
	Type        string   `json:"type"`
	Source      Location `json:"source"`
}

// Update is reported whenever the hovered destination changes.
type Update struct {
	DraggableID string    `json:"draggableId"`
	Destination *Location `json:"destination"`
}

// Options configures an Engine.
type Options struct {
	// RecoveryDelay is how long after pointer-up a list drag may stay
	// active before the engine finishes it on its own.
	RecoveryDelay time.Duration
	// Remount is called after a forced finish so the host can rebuild its
	// drag context.
	Remount func()
	// Viewport, when set, is autoscrolled during card drags.
	Viewport Viewport
	Scroll   ScrollConfig
}

// DefaultRecoveryDelay is used when Options.RecoveryDelay is zero.
const DefaultRecoveryDelay = 200 * time.Millisecond

type session struct {
	seq   uint64
	ctx   context.Context
	start Start
	last  *Location

	cancelRecovery func() bool
	stopScroll     context.CancelFunc
	scroller       *autoScroller
}

// Engine tracks one drag at a time.
type Engine struct {
	handler Handler
	opts    Options
	logger  zerolog.Logger

	afterFunc func(time.Duration, func()) func() bool

	mu     sync.Mutex
	active *session
	seq    uint64
	// recovered is the draggable of the last forced finish. A late End for
	// it is dropped so the move is not applied twice.
	recovered string
}

// NewEngine returns an engine dispatching moves to h.
func NewEngine(h Handler, opts Options) *Engine {
	if opts.RecoveryDelay <= 0 {
		opts.RecoveryDelay = DefaultRecoveryDelay
	}
	if opts.Scroll == (ScrollConfig{}) {
		opts.Scroll = DefaultScrollConfig()
	}
	return &Engine{
		handler: h,
		opts:    opts,
		logger:  logging.WithComponent("drag"),
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// Active reports whether a drag is in progress.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

// Start begins tracking a drag. A drag still marked active is discarded.
// ctx is used for the moves this drag resolves to, including a forced
// finish.
func (e *Engine) Start(ctx context.Context, s Start) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.logger.Warn().Str("draggable", e.active.start.DraggableID).Msg("drag started while another was active")
		e.release(e.active)
	}
	e.seq++
	e.recovered = ""
	src := s.Source
	sess := &session{seq: e.seq, ctx: ctx, start: s, last: &src}

	if s.Type == TypeCard && e.opts.Viewport != nil {
		sctx, cancel := context.WithCancel(ctx)
		sess.stopScroll = cancel
		sess.scroller = &autoScroller{cfg: e.opts.Scroll, vp: e.opts.Viewport}
		go sess.scroller.run(sctx)
	}
	e.active = sess
}

// Update records the destination currently under the pointer.
func (e *Engine) Update(u Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || e.active.start.DraggableID != u.DraggableID {
		return
	}
	if u.Destination == nil {
		e.active.last = nil
		return
	}
	dst := *u.Destination
	e.active.last = &dst
}

// PointerMove feeds the pointer position to the autoscroller.
func (e *Engine) PointerMove(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != nil && e.active.scroller != nil {
		e.active.scroller.move(p)
	}
}

// PointerUp arms lost-end recovery for list drags. If End has not been
// called RecoveryDelay later, the drag is finished with the last known
// destination and the host is asked to remount.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := e.active
	if sess == nil || sess.start.Type != TypeList || sess.cancelRecovery != nil {
		return
	}
	seq := sess.seq
	sess.cancelRecovery = e.afterFunc(e.opts.RecoveryDelay, func() { e.recover(seq) })
}

// End finishes the drag and dispatches the resulting move, if any.
func (e *Engine) End(ctx context.Context, r DropResult) error {
	e.mu.Lock()
	late := e.active == nil && e.recovered != "" && e.recovered == r.DraggableID
	e.recovered = ""
	if e.active != nil {
		e.release(e.active)
	}
	e.mu.Unlock()
	if late {
		e.logger.Debug().Str("draggable", r.DraggableID).Msg("ignoring end event after forced finish")
		return nil
	}
	return e.dispatch(ctx, r, "moved")
}

func (e *Engine) recover(seq uint64) {
	e.mu.Lock()
	sess := e.active
	if sess == nil || sess.seq != seq {
		e.mu.Unlock()
		return
	}
	e.release(sess)
	e.recovered = sess.start.DraggableID
	e.mu.Unlock()

	r := DropResult{
		DraggableID: sess.start.DraggableID,
		Type:        sess.start.Type,
		Source:      sess.start.Source,
		Destination: sess.last,
	}
	e.logger.Warn().Str("draggable", r.DraggableID).Msg("drag end event lost, forcing finish")
	if err := e.dispatch(sess.ctx, r, "recovered"); err != nil {
		e.logger.Error().Err(err).Str("draggable", r.DraggableID).Msg("forced drag finish failed")
	}
	if e.opts.Remount != nil {
		e.opts.Remount()
	}
}

// release clears sess. Callers hold e.mu.
func (e *Engine) release(sess *session) {
	if sess.cancelRecovery != nil {
		sess.cancelRecovery()
	}
	if sess.stopScroll != nil {
		sess.stopScroll()
	}
	if e.active == sess {
		e.active = nil
	}
}

func (e *Engine) dispatch(ctx context.Context, r DropResult, outcome string) error {
	cmd, err := Resolve(r)
	if err != nil {
		metrics.RecordDragResult(r.Type, "error")
		return err
	}
	if cmd == nil {
		metrics.RecordDragResult(r.Type, "noop")
		return nil
	}
	switch c := cmd.(type) {
	case *ListMove:
		err = e.handler.MoveList(ctx, *c)
	case *CardMove:
		err = e.handler.MoveCard(ctx, *c)
	default:
		err = errors.New("unsupported drag command")
	}
	if err != nil {
		metrics.RecordDragResult(r.Type, "error")
		return fmt.Errorf("apply %s drop: %w", r.Type, err)
	}
	metrics.RecordDragResult(r.Type, outcome)
	return nil
}
