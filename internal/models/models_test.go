// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestRefDecodesAllShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Ref
	}{
		{`{"list": 3}`, 3},
		{`{"list": "4"}`, 4},
		{`{"list": {"id": 5, "title": "Doing"}}`, 5},
		{`{"list": null}`, 0},
	}
	for _, tt := range tests {
		var c Card
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if c.List != tt.want {
			t.Errorf("Unmarshal(%s).List = %d, want %d", tt.in, c.List, tt.want)
		}
	}
}

func TestRefEncodesAsNumber(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Checklist{ID: 1, Card: 9, Title: "QA"})
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back["card"] != 9.0 {
		t.Errorf("card = %v, want 9", back["card"])
	}
}

func TestRefRejectsGarbage(t *testing.T) {
	t.Parallel()

	var c Card
	if err := json.Unmarshal([]byte(`{"list": "doing"}`), &c); err == nil {
		t.Error("expected error for non-numeric string ref")
	}
}

func TestRoleOf(t *testing.T) {
	t.Parallel()

	b := &Board{
		ID:    1,
		Owner: User{ID: 10},
		Memberships: []*Membership{
			{ID: 1, User: User{ID: 11}, Role: RoleAdmin},
			{ID: 2, User: User{ID: 12}, Role: RoleViewer},
		},
	}
	tests := []struct {
		user int64
		want Role
		ok   bool
	}{
		{10, RoleOwner, true},
		{11, RoleAdmin, true},
		{12, RoleViewer, true},
		{13, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		got, ok := b.RoleOf(tt.user)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RoleOf(%d) = (%q, %v), want (%q, %v)", tt.user, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	if RoleOwner.Valid() {
		t.Error("owner must not be stored on a membership")
	}
	if !RoleDeveloper.Valid() {
		t.Error("developer should be valid")
	}
}

func TestFindCard(t *testing.T) {
	t.Parallel()

	b := &Board{Lists: []*List{
		{ID: 1, Cards: []*Card{{ID: 100}}},
		{ID: 2, Cards: []*Card{{ID: 200}, {ID: 201}}},
	}}
	c, l := b.FindCard(201)
	if c == nil || l == nil || l.ID != 2 {
		t.Fatalf("FindCard(201) = (%v, %v)", c, l)
	}
	if c, _ := b.FindCard(999); c != nil {
		t.Error("FindCard(999) should be nil")
	}
	if b.FindList(2) == nil {
		t.Error("FindList(2) should exist")
	}
}
