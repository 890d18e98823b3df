// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import (
	"fmt"
	"maps"
	"time"

	"github.com/tomtom215/boardsync/internal/coerce"
)

// Decode validates payload against kind and converts it into the matching
// Mutation. Payloads that fail ValidatePayload are rejected with an error
// wrapping ErrInvalidPayload or ErrUnknownAction.
func Decode(kind ActionKind, payload any) (Mutation, error) {
	if err := CheckPayload(kind, payload); err != nil {
		return nil, err
	}
	norm, err := coerce.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	switch kindClasses[kind] {
	case classHeartbeat:
		ts, _ := coerce.IntField(norm, "timestamp")
		return Heartbeat{At: time.UnixMilli(ts)}, nil
	case classDelete:
		id, _ := coerce.AsInt64(norm)
		return decodeRemoval(kind, id), nil
	}

	id, _ := coerce.IntField(norm, "id")
	patch, meta := split(norm)

	switch kind {
	case ActionUpdateBoard:
		return BoardPatch{Patch: patch}, nil
	case ActionCreateList:
		return ListUpsert{Action: kind, ID: id, Patch: patch}, nil
	case ActionUpdateList:
		m := ListUpsert{Action: kind, ID: id, Patch: patch}
		if meta != nil {
			var lm updateListMeta
			if err := coerce.Into(meta, &lm); err == nil {
				m.DestIndex = lm.DestIndex
			}
		}
		return m, nil
	case ActionMoveList:
		var lm moveListMeta
		if err := coerce.Into(meta, &lm); err != nil || lm.DestIndex == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, MetaKey)
		}
		return ListMove{ID: id, Patch: patch, DestIndex: *lm.DestIndex}, nil
	case ActionCreateCard, ActionUpdateCard:
		list, _ := coerce.RefID(patch, "list")
		return CardUpsert{Action: kind, ID: id, ListID: list, Patch: patch}, nil
	case ActionMoveCard:
		var cm moveCardMeta
		if err := coerce.Into(meta, &cm); err != nil || cm.DestIndex == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, MetaKey)
		}
		return CardMove{
			ID:           id,
			SourceListID: cm.SourceListID,
			DestListID:   cm.DestListID,
			DestIndex:    *cm.DestIndex,
			Patch:        patch,
		}, nil
	case ActionAddChecklist:
		return ChecklistUpsert{Action: kind, ID: id, CardID: parentID(patch, meta, "card", "cardId"), Patch: patch}, nil
	case ActionUpdateChecklist:
		card, _ := coerce.RefID(patch, "card")
		return ChecklistUpsert{Action: kind, ID: id, CardID: card, Patch: patch}, nil
	case ActionAddChecklistItem:
		return ChecklistItemUpsert{Action: kind, ID: id, ChecklistID: parentID(patch, meta, "checklist", "checklistId"), Patch: patch}, nil
	case ActionUpdateChecklistItem:
		cl, _ := coerce.RefID(patch, "checklist")
		return ChecklistItemUpsert{Action: kind, ID: id, ChecklistID: cl, Patch: patch}, nil
	case ActionDeleteChecklistItem:
		return ChecklistItemRemoval{ID: id, ChecklistID: parentID(patch, meta, "checklist", "checklistId")}, nil
	case ActionAddComment:
		return CommentUpsert{Action: kind, ID: id, CardID: parentID(patch, meta, "card", "cardId"), Patch: patch}, nil
	case ActionUpdateComment:
		card, _ := coerce.RefID(patch, "card")
		return CommentUpsert{Action: kind, ID: id, CardID: card, Patch: patch}, nil
	case ActionAddAttachment:
		card, _ := coerce.RefID(patch, "card")
		return AttachmentAdd{ID: id, CardID: card, Patch: patch}, nil
	case ActionCreateLabel, ActionUpdateLabel:
		return LabelUpsert{Action: kind, ID: id, Patch: patch}, nil
	case ActionAddMember, ActionUpdateMember:
		return MemberUpsert{Action: kind, ID: id, Patch: patch}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
}

func decodeRemoval(kind ActionKind, id int64) Mutation {
	switch kind {
	case ActionDeleteList:
		return ListRemoval{ID: id}
	case ActionDeleteCard:
		return CardRemoval{ID: id}
	case ActionDeleteChecklist:
		return ChecklistRemoval{ID: id}
	case ActionDeleteComment:
		return CommentRemoval{ID: id}
	case ActionDeleteAttachment:
		return AttachmentRemoval{ID: id}
	case ActionDeleteLabel:
		return LabelRemoval{ID: id}
	default:
		return MemberRemoval{ID: id}
	}
}

// split separates the entity fields from ws_meta. The returned patch is a
// copy; norm is not modified.
func split(norm any) (coerce.Record, coerce.Record) {
	rec, _ := coerce.AsRecord(norm)
	patch := make(coerce.Record, len(rec))
	maps.Copy(patch, rec)
	meta, _ := coerce.AsRecord(patch[MetaKey])
	delete(patch, MetaKey)
	return patch, meta
}

// parentID prefers the ws_meta field and falls back to the entity's own
// foreign key.
func parentID(patch, meta coerce.Record, refKey, metaKey string) int64 {
	if id, ok := coerce.IntField(meta, metaKey); ok && id > 0 {
		return id
	}
	id, _ := coerce.RefID(patch, refKey)
	return id
}
