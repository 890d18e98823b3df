// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// Action is one step through the dispatch pipeline. The set is closed.
type Action interface {
	action()
}

// BeginLoadBoard starts loading BoardID. The previous tree is discarded and
// the socket is pointed at the new board.
type BeginLoadBoard struct {
	BoardID int64
}

// BoardLoaded installs an authoritative tree. Boards other than the one
// being loaded are ignored.
type BoardLoaded struct {
	Board *models.Board
}

// MutationOptimistic applies a local change ahead of its request.
type MutationOptimistic struct {
	Mutation wire.Mutation
}

// MutationFulfilled carries the CRUD result of a confirmed request together
// with the arguments it was issued with.
type MutationFulfilled struct {
	Kind   wire.ActionKind
	Result any
	Args   any
}

// MutationRejected records a failed request.
type MutationRejected struct {
	Kind wire.ActionKind
	Err  error
}

// InboundMessage is a raw frame read from the socket.
type InboundMessage struct {
	Data []byte
}

// Reconcile applies a validated peer payload.
type Reconcile struct {
	Kind    wire.ActionKind
	Payload any
}

// BoardClosed tears down the session for the open board.
type BoardClosed struct{}

// Logout tears down the session and forgets the user.
type Logout struct{}

func (BeginLoadBoard) action() {}
func (BoardLoaded) action() {}
func (MutationOptimistic) action() {}
func (MutationFulfilled) action() {}
func (MutationRejected) action() {}
func (InboundMessage) action() {}
func (Reconcile) action() {}
func (BoardClosed) action() {}
func (Logout) action() {}
