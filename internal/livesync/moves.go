// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"context"

	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/drag"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// MoveAPI is the REST side of drag moves.
type MoveAPI interface {
	MoveCard(ctx context.Context, args wire.MoveCardArgs) (*models.Card, error)
	MoveList(ctx context.Context, args wire.MoveListArgs) (*models.List, error)
}

// MoveHandler runs drag commands through a Runner. It implements
// drag.Handler.
type MoveHandler struct {
	runner *Runner
	api    MoveAPI
}

// NewMoveHandler returns a MoveHandler.
func NewMoveHandler(runner *Runner, api MoveAPI) *MoveHandler {
	return &MoveHandler{runner: runner, api: api}
}

var _ drag.Handler = (*MoveHandler)(nil)

// MoveList moves a list to the active index m.To.
func (h *MoveHandler) MoveList(ctx context.Context, m drag.ListMove) error {
	args := wire.MoveListArgs{ListID: m.ListID, Order: m.To + 1}
	_, err := h.runner.Run(ctx, Request{
		Kind: wire.ActionMoveList,
		Optimistic: wire.ListMove{
			ID:        m.ListID,
			Patch:     coerce.Record{"id": float64(m.ListID)},
			DestIndex: m.To,
		},
		Args: args,
		Do: func(ctx context.Context) (any, error) {
			l, err := h.api.MoveList(ctx, args)
			if err != nil {
				return nil, err
			}
			return l, nil
		},
	})
	return err
}

// MoveCard moves a card to index m.To of list m.ToListID.
func (h *MoveHandler) MoveCard(ctx context.Context, m drag.CardMove) error {
	args := wire.MoveCardArgs{CardID: m.CardID, ListID: m.ToListID, Order: m.To + 1, SourceListID: m.FromListID}
	_, err := h.runner.Run(ctx, Request{
		Kind: wire.ActionMoveCard,
		Optimistic: wire.CardMove{
			ID:           m.CardID,
			SourceListID: m.FromListID,
			DestListID:   m.ToListID,
			DestIndex:    m.To,
			Patch:        coerce.Record{"id": float64(m.CardID), "list": float64(m.ToListID)},
		},
		Args: args,
		Do: func(ctx context.Context) (any, error) {
			c, err := h.api.MoveCard(ctx, args)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})
	return err
}
