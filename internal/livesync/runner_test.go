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

	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

var errDenied = errors.New("denied")

type authorizerFunc func(models.Role, wire.ActionKind) error

func (f authorizerFunc) Authorize(role models.Role, kind wire.ActionKind) error { return f(role, kind) }

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) FetchBoard(_ context.Context, boardID int64) (*models.Board, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b := fixture()
	b.ID = boardID
	return b, nil
}

func optimisticMove() wire.CardMove {
	return wire.CardMove{
		ID:           1,
		SourceListID: 10,
		DestListID:   20,
		DestIndex:    1,
		Patch:        coerce.Record{"id": float64(1), "list": float64(20)},
	}
}

func TestRunnerConfirmed(t *testing.T) {
	s, conn := newLoadedStore(t)
	fetcher := &fakeFetcher{}
	r := NewRunner(s, nil, fetcher)

	var sawOptimistic bool
	result, err := r.Run(context.Background(), Request{
		Kind:       wire.ActionMoveCard,
		Optimistic: optimisticMove(),
		Args:       wire.MoveCardArgs{CardID: 1, ListID: 20, Order: 2, SourceListID: 10},
		Do: func(context.Context) (any, error) {
			sawOptimistic = slices.Equal(cardIDs(s.Snapshot(), 20), []int64{3, 1})
			return map[string]any{"id": 1, "list": 20, "order": 2, "title": "c1"}, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result == nil {
		t.Error("Run returned no result")
	}
	if !sawOptimistic {
		t.Error("optimistic move was not applied before the request")
	}
	if got := cardIDs(s.Snapshot(), 20); !slices.Equal(got, []int64{3, 1}) {
		t.Errorf("list 20 = %v, want [3 1]", got)
	}
	if len(conn.sent) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(conn.sent))
	}
	if fetcher.calls != 0 {
		t.Errorf("refetched %d times on success", fetcher.calls)
	}
}

func TestRunnerFailedRefetches(t *testing.T) {
	s, conn := newLoadedStore(t)
	fetcher := &fakeFetcher{}
	r := NewRunner(s, nil, fetcher)
	boom := errors.New("HTTP 500")

	_, err := r.Run(context.Background(), Request{
		Kind:       wire.ActionMoveCard,
		Optimistic: optimisticMove(),
		Do:         func(context.Context) (any, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
	if fetcher.calls != 1 {
		t.Errorf("refetches = %d, want 1", fetcher.calls)
	}
	b := s.Snapshot()
	if got := cardIDs(b, 10); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("list 10 after rollback = %v, want [1 2]", got)
	}
	if len(conn.sent) != 0 {
		t.Errorf("failed mutation was broadcast")
	}
}

func TestRunnerFailedRefetchError(t *testing.T) {
	s, _ := newLoadedStore(t)
	r := NewRunner(s, nil, &fakeFetcher{err: errors.New("offline")})
	_, err := r.Run(context.Background(), Request{
		Kind:       wire.ActionDeleteCard,
		Optimistic: wire.CardRemoval{ID: 1},
		Do:         func(context.Context) (any, error) { return nil, errors.New("HTTP 502") },
	})
	if err == nil {
		t.Fatal("expected error")
	}
	// The unconfirmed state stays until a later refetch succeeds.
	if got := cardIDs(s.Snapshot(), 10); !slices.Equal(got, []int64{2}) {
		t.Errorf("list 10 = %v, want [2]", got)
	}
}

func TestRunnerDenied(t *testing.T) {
	s, conn := newLoadedStore(t)
	var gotRole models.Role
	authz := authorizerFunc(func(role models.Role, kind wire.ActionKind) error {
		gotRole = role
		return errDenied
	})
	r := NewRunner(s, authz, &fakeFetcher{})
	called := false
	before := boardJSON(t, s)

	_, err := r.Run(context.Background(), Request{
		Kind:       wire.ActionDeleteCard,
		Optimistic: wire.CardRemoval{ID: 1},
		Do: func(context.Context) (any, error) {
			called = true
			return 1, nil
		},
	})
	if !errors.Is(err, errDenied) {
		t.Fatalf("Run error = %v, want errDenied", err)
	}
	if gotRole != models.RoleOwner {
		t.Errorf("authorized role = %q, want owner", gotRole)
	}
	if called {
		t.Error("request issued despite denial")
	}
	if boardJSON(t, s) != before || len(conn.sent) != 0 {
		t.Error("denied request touched state")
	}
}

func TestRunnerLoad(t *testing.T) {
	conn := &fakeConn{}
	s := NewStore(StoreConfig{
		Conn:   conn,
		Token:  func() (string, error) { return "tok", nil },
		UserID: func() int64 { return me },
	})
	r := NewRunner(s, nil, &fakeFetcher{})
	if err := r.Load(context.Background(), 1); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Loaded() || s.BoardID() != 1 {
		t.Errorf("board not loaded: %d", s.BoardID())
	}
	if len(conn.connects) != 1 {
		t.Errorf("connects = %d, want 1", len(conn.connects))
	}

	failing := NewRunner(NewStore(StoreConfig{}), nil, &fakeFetcher{err: errors.New("404")})
	if err := failing.Load(context.Background(), 3); err == nil {
		t.Error("expected fetch error")
	}
}

func TestRunnerRequiresCall(t *testing.T) {
	s, _ := newLoadedStore(t)
	if _, err := NewRunner(s, nil, nil).Run(context.Background(), Request{Kind: wire.ActionDeleteCard}); err == nil {
		t.Error("expected error for request without call")
	}
}
