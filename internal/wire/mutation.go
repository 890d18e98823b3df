// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import (
	"time"

	"github.com/tomtom215/boardsync/internal/coerce"
)

// Mutation is a decoded, validated board change. The set of implementations
// is closed; consumers switch on the concrete type.
//
// Patch fields hold the entity record exactly as received (minus ws_meta) so
// that a merge can tell which fields were present.
type Mutation interface {
	Kind() ActionKind
	mutation()
}

// BoardPatch updates top-level board fields.
type BoardPatch struct {
	Patch coerce.Record
}

// ListUpsert creates or updates a list. DestIndex is set when an update also
// repositions the list.
type ListUpsert struct {
	Action    ActionKind
	ID        int64
	Patch     coerce.Record
	DestIndex *int
}

// ListMove repositions a list among the active lists.
type ListMove struct {
	ID        int64
	Patch     coerce.Record
	DestIndex int
}

// ListRemoval deletes a list and its cards.
type ListRemoval struct{ ID int64 }

// CardUpsert creates or updates a card in ListID. ListID is zero when the
// payload does not name a list.
type CardUpsert struct {
	Action ActionKind
	ID     int64
	ListID int64
	Patch  coerce.Record
}

// CardMove moves a card to DestIndex of DestListID.
type CardMove struct {
	ID           int64
	SourceListID int64
	DestListID   int64
	DestIndex    int
	Patch        coerce.Record
}

// CardRemoval deletes a card wherever it is.
type CardRemoval struct{ ID int64 }

// ChecklistUpsert creates or updates a checklist. CardID is zero when the
// payload does not name a card.
type ChecklistUpsert struct {
	Action ActionKind
	ID     int64
	CardID int64
	Patch  coerce.Record
}

// ChecklistRemoval deletes a checklist.
type ChecklistRemoval struct{ ID int64 }

// ChecklistItemUpsert creates or updates a checklist item.
type ChecklistItemUpsert struct {
	Action      ActionKind
	ID          int64
	ChecklistID int64
	Patch       coerce.Record
}

// ChecklistItemRemoval deletes an item. ChecklistID narrows the search when
// known.
type ChecklistItemRemoval struct {
	ID          int64
	ChecklistID int64
}

// CommentUpsert creates or updates a comment.
type CommentUpsert struct {
	Action ActionKind
	ID     int64
	CardID int64
	Patch  coerce.Record
}

// CommentRemoval deletes a comment.
type CommentRemoval struct{ ID int64 }

// AttachmentAdd attaches a file to a card.
type AttachmentAdd struct {
	ID     int64
	CardID int64
	Patch  coerce.Record
}

// AttachmentRemoval deletes an attachment.
type AttachmentRemoval struct{ ID int64 }

// LabelUpsert creates or updates a board label.
type LabelUpsert struct {
	Action ActionKind
	ID     int64
	Patch  coerce.Record
}

// LabelRemoval deletes a board label.
type LabelRemoval struct{ ID int64 }

// MemberUpsert adds or updates a board membership.
type MemberUpsert struct {
	Action ActionKind
	ID     int64
	Patch  coerce.Record
}

// MemberRemoval removes a board membership.
type MemberRemoval struct{ ID int64 }

// Heartbeat is a keepalive. It never reaches the merge engine.
type Heartbeat struct{ At time.Time }

func (BoardPatch) Kind() ActionKind { return ActionUpdateBoard }
func (m ListUpsert) Kind() ActionKind { return m.Action }
func (ListMove) Kind() ActionKind { return ActionMoveList }
func (ListRemoval) Kind() ActionKind { return ActionDeleteList }
func (m CardUpsert) Kind() ActionKind { return m.Action }
func (CardMove) Kind() ActionKind { return ActionMoveCard }
func (CardRemoval) Kind() ActionKind { return ActionDeleteCard }
func (m ChecklistUpsert) Kind() ActionKind { return m.Action }
func (ChecklistRemoval) Kind() ActionKind { return ActionDeleteChecklist }
func (m ChecklistItemUpsert) Kind() ActionKind { return m.Action }
func (ChecklistItemRemoval) Kind() ActionKind { return ActionDeleteChecklistItem }
func (m CommentUpsert) Kind() ActionKind { return m.Action }
func (CommentRemoval) Kind() ActionKind { return ActionDeleteComment }
func (AttachmentAdd) Kind() ActionKind { return ActionAddAttachment }
func (AttachmentRemoval) Kind() ActionKind { return ActionDeleteAttachment }
func (m LabelUpsert) Kind() ActionKind { return m.Action }
func (LabelRemoval) Kind() ActionKind { return ActionDeleteLabel }
func (m MemberUpsert) Kind() ActionKind { return m.Action }
func (MemberRemoval) Kind() ActionKind { return ActionRemoveMember }
func (Heartbeat) Kind() ActionKind { return ActionHeartbeat }

func (BoardPatch) mutation() {}
func (ListUpsert) mutation() {}
func (ListMove) mutation() {}
func (ListRemoval) mutation() {}
func (CardUpsert) mutation() {}
func (CardMove) mutation() {}
func (CardRemoval) mutation() {}
func (ChecklistUpsert) mutation() {}
func (ChecklistRemoval) mutation() {}
func (ChecklistItemUpsert) mutation() {}
func (ChecklistItemRemoval) mutation() {}
func (CommentUpsert) mutation() {}
func (CommentRemoval) mutation() {}
func (AttachmentAdd) mutation() {}
func (AttachmentRemoval) mutation() {}
func (LabelUpsert) mutation() {}
func (LabelRemoval) mutation() {}
func (MemberUpsert) mutation() {}
func (MemberRemoval) mutation() {}
func (Heartbeat) mutation() {}
