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

// eachCard calls fn for every card until fn returns true.
func (s *State) eachCard(fn func(*models.Card) bool) {
	for _, l := range s.board.Lists {
		for _, c := range l.Cards {
			if fn(c) {
				return
			}
		}
	}
}

func (s *State) card(id int64) *models.Card {
	c, _, _ := s.cardAt(id)
	return c
}

func indexByID[T any](s []*T, id int64, idOf func(*T) int64) int {
	return slices.IndexFunc(s, func(x *T) bool { return idOf(x) == id })
}

func checklistID(c *models.Checklist) int64 { return c.ID }
func itemID(i *models.ChecklistItem) int64 { return i.ID }
func commentID(c *models.Comment) int64 { return c.ID }
func attachmentID(a *models.Attachment) int64 { return a.ID }

// Checklists

func (s *State) checklistAt(id int64) (*models.Card, int) {
	var owner *models.Card
	at := -1
	s.eachCard(func(c *models.Card) bool {
		if i := indexByID(c.Checklists, id, checklistID); i >= 0 {
			owner, at = c, i
			return true
		}
		return false
	})
	return owner, at
}

func (s *State) upsertChecklist(m wire.ChecklistUpsert) (bool, error) {
	if card, i := s.checklistAt(m.ID); card != nil {
		cur := card.Checklists[i]
		shell := *cur
		shell.Items = nil
		next, err := overlay(&shell, m.Patch)
		if err != nil {
			return false, err
		}
		if !has(m.Patch, "items") {
			next.Items = cur.Items
		}
		next.ID = cur.ID
		card.Checklists[i] = next
		return !same(cur, next), nil
	}

	card := s.card(m.CardID)
	if card == nil {
		return false, fmt.Errorf("checklist %d: card %d not found", m.ID, m.CardID)
	}
	cl, err := decodeNew[models.Checklist](m.Patch)
	if err != nil {
		return false, err
	}
	cl.ID = m.ID
	cl.Card = models.Ref(card.ID)
	card.Checklists = append(card.Checklists, cl)
	return true, nil
}

func (s *State) removeChecklist(id int64) bool {
	card, i := s.checklistAt(id)
	if card == nil {
		return false
	}
	card.Checklists = remove(card.Checklists, i)
	return true
}

// Checklist items

func (s *State) itemAt(id, checklistHint int64) (*models.Checklist, int) {
	var owner *models.Checklist
	at := -1
	s.eachCard(func(c *models.Card) bool {
		for _, cl := range c.Checklists {
			if checklistHint != 0 && cl.ID != checklistHint {
				continue
			}
			if i := indexByID(cl.Items, id, itemID); i >= 0 {
				owner, at = cl, i
				return true
			}
		}
		return false
	})
	if owner == nil && checklistHint != 0 {
		return s.itemAt(id, 0)
	}
	return owner, at
}

func (s *State) checklist(id int64) *models.Checklist {
	card, i := s.checklistAt(id)
	if card == nil {
		return nil
	}
	return card.Checklists[i]
}

func (s *State) upsertChecklistItem(m wire.ChecklistItemUpsert) (bool, error) {
	if cl, i := s.itemAt(m.ID, m.ChecklistID); cl != nil {
		cur := cl.Items[i]
		next, err := overlay(cur, m.Patch)
		if err != nil {
			return false, err
		}
		next.ID = cur.ID
		cl.Items[i] = next
		if has(m.Patch, "order") {
			sortItems(cl.Items)
		}
		return !same(cur, next), nil
	}

	cl := s.checklist(m.ChecklistID)
	if cl == nil {
		return false, fmt.Errorf("checklist item %d: checklist %d not found", m.ID, m.ChecklistID)
	}
	item, err := decodeNew[models.ChecklistItem](m.Patch)
	if err != nil {
		return false, err
	}
	item.ID = m.ID
	item.Checklist = models.Ref(cl.ID)
	cl.Items = append(cl.Items, item)
	sortItems(cl.Items)
	return true, nil
}

// sortItems orders items by their order field; items without one keep their
// insertion position at the end.
func sortItems(items []*models.ChecklistItem) {
	slices.SortStableFunc(items, func(a, b *models.ChecklistItem) int {
		switch {
		case a.Order == b.Order:
			return 0
		case a.Order == 0:
			return 1
		case b.Order == 0:
			return -1
		case a.Order < b.Order:
			return -1
		default:
			return 1
		}
	})
}

func (s *State) removeChecklistItem(m wire.ChecklistItemRemoval) bool {
	cl, i := s.itemAt(m.ID, m.ChecklistID)
	if cl == nil {
		return false
	}
	cl.Items = remove(cl.Items, i)
	return true
}

// Comments

func (s *State) commentAt(id int64) (*models.Card, int) {
	var owner *models.Card
	at := -1
	s.eachCard(func(c *models.Card) bool {
		if i := indexByID(c.Comments, id, commentID); i >= 0 {
			owner, at = c, i
			return true
		}
		return false
	})
	return owner, at
}

func (s *State) upsertComment(m wire.CommentUpsert) (bool, error) {
	if card, i := s.commentAt(m.ID); card != nil {
		cur := card.Comments[i]
		next, err := overlay(cur, m.Patch)
		if err != nil {
			return false, err
		}
		next.ID = cur.ID
		card.Comments[i] = next
		return !same(cur, next), nil
	}

	card := s.card(m.CardID)
	if card == nil {
		return false, fmt.Errorf("comment %d: card %d not found", m.ID, m.CardID)
	}
	c, err := decodeNew[models.Comment](m.Patch)
	if err != nil {
		return false, err
	}
	c.ID = m.ID
	c.Card = models.Ref(card.ID)
	card.Comments = append(card.Comments, c)
	return true, nil
}

func (s *State) removeComment(id int64) bool {
	card, i := s.commentAt(id)
	if card == nil {
		return false
	}
	card.Comments = remove(card.Comments, i)
	return true
}

// Attachments

func (s *State) attachmentAt(id int64) (*models.Card, int) {
	var owner *models.Card
	at := -1
	s.eachCard(func(c *models.Card) bool {
		if i := indexByID(c.Attachments, id, attachmentID); i >= 0 {
			owner, at = c, i
			return true
		}
		return false
	})
	return owner, at
}

func (s *State) addAttachment(m wire.AttachmentAdd) (bool, error) {
	if card, i := s.attachmentAt(m.ID); card != nil {
		cur := card.Attachments[i]
		next, err := overlay(cur, m.Patch)
		if err != nil {
			return false, err
		}
		next.ID = cur.ID
		card.Attachments[i] = next
		return !same(cur, next), nil
	}

	card := s.card(m.CardID)
	if card == nil {
		return false, fmt.Errorf("attachment %d: card %d not found", m.ID, m.CardID)
	}
	a, err := decodeNew[models.Attachment](m.Patch)
	if err != nil {
		return false, err
	}
	a.ID = m.ID
	a.Card = models.Ref(card.ID)
	card.Attachments = append(card.Attachments, a)
	return true, nil
}

func (s *State) removeAttachment(id int64) bool {
	card, i := s.attachmentAt(id)
	if card == nil {
		return false
	}
	card.Attachments = remove(card.Attachments, i)
	return true
}
