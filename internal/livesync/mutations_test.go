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

	"github.com/tomtom215/boardsync/internal/boardapi"
	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// fakeCardAPI answers like the board API and records what it was asked.
type fakeCardAPI struct {
	calls []string
	err   error
	// during runs inside each call, before it answers.
	during func()
}

func (f *fakeCardAPI) call(name string) error {
	f.calls = append(f.calls, name)
	if f.during != nil {
		f.during()
	}
	return f.err
}

func (f *fakeCardAPI) CreateCard(_ context.Context, in boardapi.CardInput) (*models.Card, error) {
	if err := f.call("CreateCard"); err != nil {
		return nil, err
	}
	return &models.Card{ID: 4, List: models.Ref(in.ListID), Title: in.Title, Order: 2}, nil
}

func (f *fakeCardAPI) UpdateCard(_ context.Context, id int64, fields map[string]any) (*models.Card, error) {
	if err := f.call("UpdateCard"); err != nil {
		return nil, err
	}
	title, _ := fields["title"].(string)
	return &models.Card{ID: id, List: 10, Title: title, Order: 1}, nil
}

func (f *fakeCardAPI) DeleteCard(context.Context, int64) error {
	return f.call("DeleteCard")
}

func (f *fakeCardAPI) AddComment(_ context.Context, cardID int64, text string) (*models.Comment, error) {
	if err := f.call("AddComment"); err != nil {
		return nil, err
	}
	return &models.Comment{ID: 50, Card: models.Ref(cardID), Author: models.User{ID: me, Username: "me"}, Text: text}, nil
}

func (f *fakeCardAPI) AddChecklistItem(_ context.Context, checklistID int64, text string) (*models.ChecklistItem, error) {
	if err := f.call("AddChecklistItem"); err != nil {
		return nil, err
	}
	return &models.ChecklistItem{ID: 72, Checklist: models.Ref(checklistID), Text: text, Order: 3}, nil
}

func (f *fakeCardAPI) DeleteChecklistItem(context.Context, wire.DeleteChecklistItemArgs) error {
	return f.call("DeleteChecklistItem")
}

// withChecklist reloads the fixture with checklist 7 (items 70, 71) on card 1.
func withChecklist(t *testing.T, s *Store) {
	t.Helper()
	b := fixture()
	b.Lists[0].Cards[0].Checklists = []*models.Checklist{{
		ID: 7, Card: 1, Title: "todo",
		Items: []*models.ChecklistItem{
			{ID: 70, Checklist: 7, Text: "a", Order: 1},
			{ID: 71, Checklist: 7, Text: "b", Order: 2},
		},
	}}
	if err := s.Dispatch(BoardLoaded{Board: b}); err != nil {
		t.Fatalf("BoardLoaded: %v", err)
	}
}

func itemIDs(t *testing.T, s *Store) []int64 {
	t.Helper()
	c, _ := s.Snapshot().FindCard(1)
	if c == nil || len(c.Checklists) != 1 {
		t.Fatalf("card 1 checklists = %+v", c)
	}
	var ids []int64
	for _, it := range c.Checklists[0].Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func lastSent(t *testing.T, conn *fakeConn, kind wire.ActionKind) wire.Envelope {
	t.Helper()
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.sent) != 1 {
		t.Fatalf("sent %d envelopes, want 1", len(conn.sent))
	}
	env := conn.sent[0]
	if env.ActionType != kind || env.BoardID != 1 || env.SenderID != me {
		t.Fatalf("envelope = %+v", env)
	}
	return env
}

func TestMutationsCreateCard(t *testing.T) {
	s, conn := newLoadedStore(t)
	api := &fakeCardAPI{}
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), api)

	card, err := m.CreateCard(context.Background(), boardapi.CardInput{ListID: 20, Title: "c4"})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if card.ID != 4 || card.Title != "c4" {
		t.Errorf("card = %+v", card)
	}
	if got := cardIDs(s.Snapshot(), 20); !slices.Equal(got, []int64{3, 4}) {
		t.Errorf("list 20 = %v, want [3 4]", got)
	}
	env := lastSent(t, conn, wire.ActionCreateCard)
	if id, _ := coerce.IntField(env.Payload, "id"); id != 4 {
		t.Errorf("payload id = %d, want 4", id)
	}
}

func TestMutationsUpdateCardIsOptimistic(t *testing.T) {
	s, conn := newLoadedStore(t)
	api := &fakeCardAPI{}
	var seen string
	api.during = func() {
		c, _ := s.Snapshot().FindCard(1)
		seen = c.Title
	}
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), api)

	if _, err := m.UpdateCard(context.Background(), 1, map[string]any{"title": "renamed"}); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if seen != "renamed" {
		t.Errorf("title during request = %q, want the optimistic value", seen)
	}
	c, _ := s.Snapshot().FindCard(1)
	if c.Title != "renamed" || c.List.ID() != 10 {
		t.Errorf("card = %+v", c)
	}
	lastSent(t, conn, wire.ActionUpdateCard)
}

func TestMutationsDeleteCard(t *testing.T) {
	s, conn := newLoadedStore(t)
	api := &fakeCardAPI{}
	var during []int64
	api.during = func() { during = cardIDs(s.Snapshot(), 10) }
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), api)

	if err := m.DeleteCard(context.Background(), 1); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	if !slices.Equal(during, []int64{2}) {
		t.Errorf("list 10 during request = %v, want [2]", during)
	}
	env := lastSent(t, conn, wire.ActionDeleteCard)
	if id, ok := coerce.AsInt64(env.Payload); !ok || id != 1 {
		t.Errorf("payload = %v, want bare id 1", env.Payload)
	}
}

func TestMutationsAddComment(t *testing.T) {
	s, conn := newLoadedStore(t)
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), &fakeCardAPI{})

	if _, err := m.AddComment(context.Background(), 2, "looks good"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	c, _ := s.Snapshot().FindCard(2)
	if len(c.Comments) != 1 || c.Comments[0].ID != 50 || c.Comments[0].Text != "looks good" {
		t.Errorf("comments = %+v", c.Comments)
	}
	env := lastSent(t, conn, wire.ActionAddComment)
	meta, _ := coerce.Field(env.Payload, wire.MetaKey)
	if card, _ := coerce.IntField(meta, "cardId"); card != 2 {
		t.Errorf("ws_meta.cardId = %d, want 2", card)
	}
}

func TestMutationsAddChecklistItem(t *testing.T) {
	s, conn := newLoadedStore(t)
	withChecklist(t, s)
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), &fakeCardAPI{})

	if _, err := m.AddChecklistItem(context.Background(), 7, "c"); err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if got := itemIDs(t, s); !slices.Equal(got, []int64{70, 71, 72}) {
		t.Errorf("items = %v, want [70 71 72]", got)
	}
	env := lastSent(t, conn, wire.ActionAddChecklistItem)
	meta, _ := coerce.Field(env.Payload, wire.MetaKey)
	if cl, _ := coerce.IntField(meta, "checklistId"); cl != 7 {
		t.Errorf("ws_meta.checklistId = %d, want 7", cl)
	}
}

func TestMutationsDeleteChecklistItem(t *testing.T) {
	s, conn := newLoadedStore(t)
	withChecklist(t, s)
	m := NewMutations(NewRunner(s, nil, &fakeFetcher{}), &fakeCardAPI{})

	if err := m.DeleteChecklistItem(context.Background(), wire.DeleteChecklistItemArgs{ChecklistID: 7, ItemID: 70}); err != nil {
		t.Fatalf("DeleteChecklistItem: %v", err)
	}
	if got := itemIDs(t, s); !slices.Equal(got, []int64{71}) {
		t.Errorf("items = %v, want [71]", got)
	}
	env := lastSent(t, conn, wire.ActionDeleteChecklistItem)
	if id, _ := coerce.IntField(env.Payload, "id"); id != 70 {
		t.Errorf("payload id = %d, want 70", id)
	}
	meta, _ := coerce.Field(env.Payload, wire.MetaKey)
	if item, _ := coerce.IntField(meta, "itemId"); item != 70 {
		t.Errorf("ws_meta.itemId = %d, want 70", item)
	}
}

func TestMutationsFailureRefetches(t *testing.T) {
	s, conn := newLoadedStore(t)
	boom := errors.New("HTTP 500")
	fetcher := &fakeFetcher{}
	m := NewMutations(NewRunner(s, nil, fetcher), &fakeCardAPI{err: boom})

	if _, err := m.UpdateCard(context.Background(), 1, map[string]any{"title": "renamed"}); !errors.Is(err, boom) {
		t.Fatalf("UpdateCard error = %v, want %v", err, boom)
	}
	if fetcher.calls != 1 {
		t.Errorf("refetches = %d, want 1", fetcher.calls)
	}
	c, _ := s.Snapshot().FindCard(1)
	if c.Title != "c1" {
		t.Errorf("title after failure = %q, want c1", c.Title)
	}
	if len(conn.sent) != 0 {
		t.Error("failed mutation was broadcast")
	}
}
