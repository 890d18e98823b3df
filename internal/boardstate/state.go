// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardstate

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// State owns one board tree.
type State struct {
	board  *models.Board
	logger zerolog.Logger
}

// New wraps b. Lists and cards are sorted by their order field; b is owned by
// the State from here on.
func New(b *models.Board) *State {
	s := &State{logger: logging.WithComponent("boardstate")}
	s.Replace(b)
	return s
}

// Board returns the current tree. Callers must not modify it.
func (s *State) Board() *models.Board {
	return s.board
}

// Replace swaps in a freshly fetched board, discarding unconfirmed
// optimistic state.
func (s *State) Replace(b *models.Board) {
	if b == nil {
		b = &models.Board{}
	}
	slices.SortStableFunc(b.Lists, func(x, y *models.List) int { return cmp.Compare(x.Order, y.Order) })
	for _, l := range b.Lists {
		slices.SortStableFunc(l.Cards, func(x, y *models.Card) int { return cmp.Compare(x.Order, y.Order) })
	}
	s.board = b
}

// Apply merges m into the tree and reports whether anything changed.
// Mutations that cannot be applied are logged and ignored.
func (s *State) Apply(m wire.Mutation) bool {
	var (
		changed bool
		err     error
	)
	switch m := m.(type) {
	case wire.BoardPatch:
		changed, err = s.patchBoard(m)
	case wire.ListUpsert:
		changed, err = s.upsertList(m.ID, m.Patch, m.DestIndex)
	case wire.ListMove:
		idx := m.DestIndex
		changed, err = s.upsertList(m.ID, m.Patch, &idx)
	case wire.ListRemoval:
		changed = s.removeList(m.ID)
	case wire.CardUpsert:
		changed, err = s.upsertCard(m)
	case wire.CardMove:
		changed, err = s.moveCard(m)
	case wire.CardRemoval:
		changed = s.removeCard(m.ID)
	case wire.ChecklistUpsert:
		changed, err = s.upsertChecklist(m)
	case wire.ChecklistRemoval:
		changed = s.removeChecklist(m.ID)
	case wire.ChecklistItemUpsert:
		changed, err = s.upsertChecklistItem(m)
	case wire.ChecklistItemRemoval:
		changed = s.removeChecklistItem(m)
	case wire.CommentUpsert:
		changed, err = s.upsertComment(m)
	case wire.CommentRemoval:
		changed = s.removeComment(m.ID)
	case wire.AttachmentAdd:
		changed, err = s.addAttachment(m)
	case wire.AttachmentRemoval:
		changed = s.removeAttachment(m.ID)
	case wire.LabelUpsert:
		changed, err = s.upsertLabel(m)
	case wire.LabelRemoval:
		changed = s.removeLabel(m.ID)
	case wire.MemberUpsert:
		changed, err = s.upsertMember(m)
	case wire.MemberRemoval:
		changed = s.removeMember(m.ID)
	case wire.Heartbeat, nil:
		return false
	default:
		s.logger.Warn().Str("kind", string(m.Kind())).Msg("no merge rule for mutation")
		return false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(m.Kind())).Msg("mutation not applied")
		return false
	}
	return changed
}
