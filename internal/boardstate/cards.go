// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import (
	"fmt"
	"slices"

	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// cardAt locates card id and returns it with its list and index.
func (s *State) cardAt(id int64) (*models.Card, *models.List, int) {
	for _, l := range s.board.Lists {
		if i := slices.IndexFunc(l.Cards, func(c *models.Card) bool { return c.ID == id }); i >= 0 {
			return l.Cards[i], l, i
		}
	}
	return nil, nil, -1
}

func (s *State) upsertCard(m wire.CardUpsert) (bool, error) {
	cur, src, ci := s.cardAt(m.ID)
	if cur == nil {
		dest := s.board.FindList(m.ListID)
		if dest == nil {
			return false, fmt.Errorf("card %d: list %d not found", m.ID, m.ListID)
		}
		c, err := decodeNew[models.Card](m.Patch)
		if err != nil {
			return false, err
		}
		c.ID = m.ID
		c.List = models.Ref(dest.ID)
		idx := cardPos.count(dest.Cards, c)
		if c.Order > 0 {
			idx = c.Order - 1
		}
		dest.Cards = cardPos.insert(dest.Cards, c, idx)
		cardPos.renumber(dest.Cards)
		return true, nil
	}

	next, err := overlay(cur, m.Patch)
	if err != nil {
		return false, err
	}
	next.ID = cur.ID

	dest := src
	if m.ListID != 0 && m.ListID != src.ID {
		if dest = s.board.FindList(m.ListID); dest == nil {
			return false, fmt.Errorf("card %d: list %d not found", m.ID, m.ListID)
		}
	}
	next.List = models.Ref(dest.ID)
	changed := !same(cur, next)

	if dest != src {
		src.Cards = remove(src.Cards, ci)
		cardPos.renumber(src.Cards)
		idx := cardPos.count(dest.Cards, next)
		if has(m.Patch, "order") && next.Order > 0 {
			idx = next.Order - 1
		}
		dest.Cards = cardPos.insert(dest.Cards, next, idx)
		cardPos.renumber(dest.Cards)
		return true, nil
	}

	src.Cards[ci] = next
	if has(m.Patch, "order") {
		before := cardIDs(src.Cards)
		src.Cards = cardPos.reorder(src.Cards, ci, next.Order-1)
		changed = changed || !slices.Equal(before, cardIDs(src.Cards))
	}
	if cardPos.renumber(src.Cards) {
		changed = true
	}
	return changed, nil
}

// moveCard removes the card from wherever it is and inserts it at
// m.DestIndex of the destination list. An unknown card is inserted.
func (s *State) moveCard(m wire.CardMove) (bool, error) {
	dest := s.board.FindList(m.DestListID)
	if dest == nil {
		return false, fmt.Errorf("card %d: destination list %d not found", m.ID, m.DestListID)
	}

	cur, src, ci := s.cardAt(m.ID)
	if cur == nil {
		c, err := decodeNew[models.Card](m.Patch)
		if err != nil {
			return false, err
		}
		c.ID = m.ID
		c.List = models.Ref(dest.ID)
		dest.Cards = cardPos.insert(dest.Cards, c, m.DestIndex)
		cardPos.renumber(dest.Cards)
		return true, nil
	}

	next, err := overlay(cur, m.Patch)
	if err != nil {
		return false, err
	}
	next.ID = cur.ID
	next.List = models.Ref(dest.ID)
	changed := !same(cur, next)

	if src == dest {
		before := cardIDs(src.Cards)
		src.Cards[ci] = next
		src.Cards = cardPos.reorder(src.Cards, ci, m.DestIndex)
		changed = changed || !slices.Equal(before, cardIDs(src.Cards))
	} else {
		src.Cards = remove(src.Cards, ci)
		cardPos.renumber(src.Cards)
		dest.Cards = cardPos.insert(dest.Cards, next, m.DestIndex)
		changed = true
	}
	if cardPos.renumber(dest.Cards) {
		changed = true
	}
	return changed, nil
}

func (s *State) removeCard(id int64) bool {
	_, l, i := s.cardAt(id)
	if l == nil {
		return false
	}
	l.Cards = remove(l.Cards, i)
	cardPos.renumber(l.Cards)
	return true
}

func cardIDs(cs []*models.Card) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
