// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import (
	"fmt"
	"slices"

	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

func (s *State) patchBoard(m wire.BoardPatch) (bool, error) {
	b := s.board
	if id, ok := coerce.IntField(m.Patch, "id"); ok && b.ID != 0 && id != b.ID {
		return false, fmt.Errorf("board %d: patch is for board %d", b.ID, id)
	}
	shell := *b
	shell.Lists, shell.Labels, shell.Memberships = nil, nil, nil
	next, err := overlay(&shell, m.Patch)
	if err != nil {
		return false, err
	}
	if !has(m.Patch, "lists") {
		next.Lists = b.Lists
	}
	if !has(m.Patch, "labels") {
		next.Labels = b.Labels
	}
	if !has(m.Patch, "memberships") {
		next.Memberships = b.Memberships
	}
	changed := !same(b, next)
	s.Replace(next)
	return changed, nil
}

func (s *State) listIndex(id int64) int {
	return slices.IndexFunc(s.board.Lists, func(l *models.List) bool { return l.ID == id })
}

// mergeList overlays patch on cur without round-tripping its cards.
func mergeList(cur *models.List, patch coerce.Record) (*models.List, error) {
	shell := *cur
	shell.Cards = nil
	next, err := overlay(&shell, patch)
	if err != nil {
		return nil, err
	}
	if !has(patch, "cards") {
		next.Cards = cur.Cards
	}
	next.ID = cur.ID
	return next, nil
}

// upsertList merges or inserts list id. A non-nil destIndex, or an order
// field in the patch, positions the list among the active lists.
func (s *State) upsertList(id int64, patch coerce.Record, destIndex *int) (bool, error) {
	b := s.board
	i := s.listIndex(id)
	if i < 0 {
		l, err := decodeNew[models.List](patch)
		if err != nil {
			return false, err
		}
		l.ID = id
		if l.Board == 0 {
			l.Board = models.Ref(b.ID)
		}
		idx := listPos.count(b.Lists, l)
		switch {
		case destIndex != nil:
			idx = *destIndex
		case l.Order > 0:
			idx = l.Order - 1
		}
		b.Lists = listPos.insert(b.Lists, l, idx)
		listPos.renumber(b.Lists)
		return true, nil
	}

	cur := b.Lists[i]
	next, err := mergeList(cur, patch)
	if err != nil {
		return false, err
	}
	changed := !same(cur, next)
	b.Lists[i] = next

	target := -1
	switch {
	case destIndex != nil:
		target = *destIndex
	case has(patch, "order"):
		target = next.Order - 1
	}
	if target >= 0 {
		before := listIDs(b.Lists)
		b.Lists = listPos.reorder(b.Lists, i, target)
		changed = changed || !slices.Equal(before, listIDs(b.Lists))
	}
	if listPos.renumber(b.Lists) {
		changed = true
	}
	return changed, nil
}

func (s *State) removeList(id int64) bool {
	i := s.listIndex(id)
	if i < 0 {
		return false
	}
	s.board.Lists = remove(s.board.Lists, i)
	listPos.renumber(s.board.Lists)
	return true
}

func listIDs(ls []*models.List) []int64 {
	out := make([]int64, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}
