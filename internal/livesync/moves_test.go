// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/boardsync/internal/drag"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

type fakeMoveAPI struct {
	cardArgs []wire.MoveCardArgs
	listArgs []wire.MoveListArgs
	err      error
}

func (f *fakeMoveAPI) MoveCard(_ context.Context, args wire.MoveCardArgs) (*models.Card, error) {
	f.cardArgs = append(f.cardArgs, args)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Card{ID: args.CardID, List: models.Ref(args.ListID), Title: "c1", Order: args.Order}, nil
}

func (f *fakeMoveAPI) MoveList(_ context.Context, args wire.MoveListArgs) (*models.List, error) {
	f.listArgs = append(f.listArgs, args)
	if f.err != nil {
		return nil, f.err
	}
	return &models.List{ID: args.ListID, Board: 1, Title: "B", Order: args.Order}, nil
}

func listIDs(b *models.Board) []int64 {
	ids := make([]int64, 0, len(b.Lists))
	for _, l := range b.Lists {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestMoveHandlerCard(t *testing.T) {
	s, conn := newLoadedStore(t)
	api := &fakeMoveAPI{}
	h := NewMoveHandler(NewRunner(s, nil, &fakeFetcher{}), api)

	err := h.MoveCard(context.Background(), drag.CardMove{CardID: 1, FromListID: 10, ToListID: 20, From: 0, To: 1})
	if err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	want := wire.MoveCardArgs{CardID: 1, ListID: 20, Order: 2, SourceListID: 10}
	if len(api.cardArgs) != 1 || api.cardArgs[0] != want {
		t.Errorf("api args = %+v, want %+v", api.cardArgs, want)
	}
	b := s.Snapshot()
	if got := cardIDs(b, 10); !slices.Equal(got, []int64{2}) {
		t.Errorf("list 10 = %v", got)
	}
	if got := cardIDs(b, 20); !slices.Equal(got, []int64{3, 1}) {
		t.Errorf("list 20 = %v", got)
	}
	if len(conn.sent) != 1 || conn.sent[0].ActionType != wire.ActionMoveCard {
		t.Errorf("broadcasts = %+v", conn.sent)
	}
}

func TestMoveHandlerList(t *testing.T) {
	s, _ := newLoadedStore(t)
	api := &fakeMoveAPI{}
	h := NewMoveHandler(NewRunner(s, nil, &fakeFetcher{}), api)

	if err := h.MoveList(context.Background(), drag.ListMove{ListID: 20, From: 1, To: 0}); err != nil {
		t.Fatalf("MoveList: %v", err)
	}
	if len(api.listArgs) != 1 || api.listArgs[0] != (wire.MoveListArgs{ListID: 20, Order: 1}) {
		t.Errorf("api args = %+v", api.listArgs)
	}
	if got := listIDs(s.Snapshot()); !slices.Equal(got, []int64{20, 10}) {
		t.Errorf("lists = %v, want [20 10]", got)
	}
}

func TestMoveHandlerFailureRestoresBoard(t *testing.T) {
	s, _ := newLoadedStore(t)
	api := &fakeMoveAPI{err: errors.New("HTTP 500")}
	fetcher := &fakeFetcher{}
	h := NewMoveHandler(NewRunner(s, nil, fetcher), api)

	if err := h.MoveList(context.Background(), drag.ListMove{ListID: 20, From: 1, To: 0}); err == nil {
		t.Fatal("expected error")
	}
	if fetcher.calls != 1 {
		t.Errorf("refetches = %d", fetcher.calls)
	}
	if got := listIDs(s.Snapshot()); !slices.Equal(got, []int64{10, 20}) {
		t.Errorf("lists = %v, want [10 20]", got)
	}
}
