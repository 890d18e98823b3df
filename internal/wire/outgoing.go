// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import (
	"maps"

	"github.com/tomtom215/boardsync/internal/coerce"
)

// Request arguments of the positional mutations. A MutationFulfilled event
// carries one of these next to the REST result so the broadcast payload can
// say where the entity went.

// MoveCardArgs are the arguments of a card move. Order is 1-based.
type MoveCardArgs struct {
	CardID       int64
	ListID       int64
	Order        int
	SourceListID int64
}

// MoveListArgs are the arguments of a list move. Order is 1-based.
type MoveListArgs struct {
	ListID int64
	Order  int
}

// UpdateListArgs are the arguments of a list update. A non-nil Order makes
// the update positional.
type UpdateListArgs struct {
	ListID int64
	Order  *int
}

// AddChecklistArgs are the arguments of a checklist creation.
type AddChecklistArgs struct {
	CardID int64
}

// AddChecklistItemArgs are the arguments of a checklist item creation.
type AddChecklistItemArgs struct {
	ChecklistID int64
}

// DeleteChecklistItemArgs are the arguments of a checklist item deletion.
type DeleteChecklistItemArgs struct {
	ChecklistID int64
	ItemID      int64
}

// AddCommentArgs are the arguments of a comment creation.
type AddCommentArgs struct {
	CardID int64
}

// BuildOutgoingPayload turns the REST result of a fulfilled mutation into the
// payload broadcast to peers. Positional kinds get a ws_meta field derived
// from args; every other kind forwards result unchanged. Record results keep
// their fields with ws_meta added alongside, scalar results are wrapped as
// {"id": result, "ws_meta": ...}.
func BuildOutgoingPayload(kind ActionKind, result any, args any) any {
	if !kind.Positional() {
		return result
	}
	meta, ok := outgoingMeta(kind, result, args)
	if !ok {
		return result
	}
	return attachMeta(result, meta)
}

func outgoingMeta(kind ActionKind, result any, args any) (Meta, bool) {
	switch kind {
	case ActionMoveCard:
		if a, ok := args.(MoveCardArgs); ok {
			return Meta{DestListID: a.ListID, DestIndex: index(a.Order), SourceListID: a.SourceListID}, true
		}
		// Fall back to the result: the backend echoes the new list and order.
		rec, err := coerce.Normalize(result)
		if err != nil {
			return Meta{}, false
		}
		list, lok := coerce.RefID(rec, "list")
		order, ook := coerce.IntField(rec, "order")
		if !lok || !ook {
			return Meta{}, false
		}
		return Meta{DestListID: list, DestIndex: index(int(order))}, true
	case ActionMoveList:
		a, ok := args.(MoveListArgs)
		if !ok {
			return Meta{}, false
		}
		return Meta{ListID: a.ListID, DestIndex: index(a.Order)}, true
	case ActionUpdateList:
		a, ok := args.(UpdateListArgs)
		if !ok || a.Order == nil {
			return Meta{}, false
		}
		return Meta{ListID: a.ListID, DestIndex: index(*a.Order)}, true
	case ActionAddChecklistItem:
		a, ok := args.(AddChecklistItemArgs)
		if !ok {
			return Meta{}, false
		}
		return Meta{ChecklistID: a.ChecklistID}, true
	case ActionDeleteChecklistItem:
		a, ok := args.(DeleteChecklistItemArgs)
		if !ok {
			return Meta{}, false
		}
		return Meta{ChecklistID: a.ChecklistID, ItemID: a.ItemID}, true
	case ActionAddComment:
		a, ok := args.(AddCommentArgs)
		if !ok {
			return Meta{}, false
		}
		return Meta{CardID: a.CardID}, true
	case ActionAddChecklist:
		a, ok := args.(AddChecklistArgs)
		if !ok {
			return Meta{}, false
		}
		return Meta{CardID: a.CardID}, true
	}
	return Meta{}, false
}

func attachMeta(result any, meta Meta) any {
	metaRec, err := coerce.Normalize(meta)
	if err != nil {
		return result
	}
	norm, err := coerce.Normalize(result)
	if err != nil {
		return result
	}
	if rec, ok := coerce.AsRecord(norm); ok {
		out := make(coerce.Record, len(rec)+1)
		maps.Copy(out, rec)
		out[MetaKey] = metaRec
		return out
	}
	id := norm
	if id == nil && meta.ItemID != 0 {
		// Deletions answer with no body; the item id comes from the request.
		id = float64(meta.ItemID)
	}
	return coerce.Record{"id": id, MetaKey: metaRec}
}
