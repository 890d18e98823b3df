// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import (
	"slices"

	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

func (s *State) upsertLabel(m wire.LabelUpsert) (bool, error) {
	b := s.board
	var next *models.Label
	changed := true
	if i := slices.IndexFunc(b.Labels, func(l *models.Label) bool { return l.ID == m.ID }); i >= 0 {
		cur := b.Labels[i]
		merged, err := overlay(cur, m.Patch)
		if err != nil {
			return false, err
		}
		merged.ID = cur.ID
		changed = !same(cur, merged)
		b.Labels[i] = merged
		next = merged
	} else {
		created, err := decodeNew[models.Label](m.Patch)
		if err != nil {
			return false, err
		}
		created.ID = m.ID
		if created.Board == 0 {
			created.Board = models.Ref(b.ID)
		}
		b.Labels = append(b.Labels, created)
		next = created
	}

	s.eachCard(func(c *models.Card) bool {
		for j := range c.Labels {
			if c.Labels[j].ID == next.ID && c.Labels[j] != *next {
				c.Labels[j] = *next
				changed = true
			}
		}
		return false
	})
	return changed, nil
}

func (s *State) removeLabel(id int64) bool {
	b := s.board
	before := len(b.Labels)
	b.Labels = slices.DeleteFunc(b.Labels, func(l *models.Label) bool { return l.ID == id })
	changed := len(b.Labels) != before

	s.eachCard(func(c *models.Card) bool {
		n := len(c.Labels)
		c.Labels = slices.DeleteFunc(c.Labels, func(l models.Label) bool { return l.ID == id })
		changed = changed || len(c.Labels) != n
		return false
	})
	return changed
}

func (s *State) upsertMember(m wire.MemberUpsert) (bool, error) {
	b := s.board
	if i := slices.IndexFunc(b.Memberships, func(ms *models.Membership) bool { return ms.ID == m.ID }); i >= 0 {
		cur := b.Memberships[i]
		next, err := overlay(cur, m.Patch)
		if err != nil {
			return false, err
		}
		next.ID = cur.ID
		b.Memberships[i] = next
		return !same(cur, next), nil
	}
	ms, err := decodeNew[models.Membership](m.Patch)
	if err != nil {
		return false, err
	}
	ms.ID = m.ID
	b.Memberships = append(b.Memberships, ms)
	return true, nil
}

// removeMember drops the membership and unassigns its user from every card.
func (s *State) removeMember(id int64) bool {
	b := s.board
	i := slices.IndexFunc(b.Memberships, func(ms *models.Membership) bool { return ms.ID == id })
	if i < 0 {
		return false
	}
	userID := b.Memberships[i].User.ID
	b.Memberships = remove(b.Memberships, i)

	s.eachCard(func(c *models.Card) bool {
		c.Members = slices.DeleteFunc(c.Members, func(u models.User) bool { return u.ID == userID })
		return false
	})
	return true
}
