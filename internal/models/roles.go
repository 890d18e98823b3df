// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package models

// RoleOf returns the role userID holds on b, and false when the user is
// neither the owner nor a member.
func (b *Board) RoleOf(userID int64) (Role, bool) {
	if b == nil || userID == 0 {
		return "", false
	}
	if b.Owner.ID == userID {
		return RoleOwner, true
	}
	for _, m := range b.Memberships {
		if m != nil && m.User.ID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// FindList returns the list with id, or nil.
func (b *Board) FindList(id int64) *List {
	if b == nil {
		return nil
	}
	for _, l := range b.Lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// FindCard returns the card with id and the list holding it.
func (b *Board) FindCard(id int64) (*Card, *List) {
	if b == nil {
		return nil, nil
	}
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			if c.ID == id {
				return c, l
			}
		}
	}
	return nil, nil
}

// LabelIDs returns the ids of the labels embedded on c.
func (c *Card) LabelIDs() []int64 {
	ids := make([]int64, 0, len(c.Labels))
	for _, l := range c.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}
