// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import (
	"fmt"

	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/validation"
)

// ValidatePayload reports whether payload has the minimum shape kind needs
// before it may touch the board tree. It never panics on malformed input.
func ValidatePayload(kind ActionKind, payload any) bool {
	return CheckPayload(kind, payload) == nil
}

// CheckPayload is ValidatePayload with the reason for rejection.
func CheckPayload(kind ActionKind, payload any) error {
	class, ok := kindClasses[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
	norm, err := coerce.Normalize(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	switch class {
	case classHeartbeat:
		if !coerce.IsRecord(norm) {
			return fmt.Errorf("%w: heartbeat payload is not an object", ErrInvalidPayload)
		}
		return nil
	case classDelete:
		if _, ok := coerce.AsInt64(norm); !ok {
			return fmt.Errorf("%w: %s expects a numeric id", ErrInvalidPayload, kind)
		}
		return nil
	}

	if !coerce.HasNumericID(norm) {
		return fmt.Errorf("%w: %s expects an object with a numeric id", ErrInvalidPayload, kind)
	}
	switch kind {
	case ActionAddMember, ActionUpdateMember:
		if !coerce.HasNumericID(mustField(norm, "user")) {
			return fmt.Errorf("%w: %s expects a user with a numeric id", ErrInvalidPayload, kind)
		}
	}
	if class == classPositional {
		return checkMeta(kind, norm)
	}
	return nil
}

// checkMeta validates the ws_meta of a positional payload.
func checkMeta(kind ActionKind, rec any) error {
	raw, present := coerce.Field(rec, MetaKey)
	if present && !coerce.IsRecord(raw) {
		return fmt.Errorf("%w: %s is not an object", ErrInvalidPayload, MetaKey)
	}

	var target any
	switch kind {
	case ActionMoveCard:
		target = &moveCardMeta{}
	case ActionMoveList:
		target = &moveListMeta{}
	case ActionUpdateList:
		if !present {
			return nil
		}
		target = &updateListMeta{}
	case ActionAddChecklistItem, ActionDeleteChecklistItem:
		if !present {
			if _, ok := coerce.RefID(rec, "checklist"); ok {
				return nil
			}
		}
		target = &checklistMeta{}
	case ActionAddComment, ActionAddChecklist:
		if !present {
			if _, ok := coerce.RefID(rec, "card"); ok {
				return nil
			}
		}
		target = &cardMeta{}
	default:
		return nil
	}
	if !present {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidPayload, kind, MetaKey)
	}
	if err := coerce.Into(raw, target); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, MetaKey, err)
	}
	if err := validateStruct(target); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, MetaKey, err)
	}
	return nil
}

func mustField(v any, key string) any {
	f, _ := coerce.Field(v, key)
	return f
}

func validateStruct(s any) error {
	if verr := validation.ValidateStruct(s); verr != nil {
		return verr
	}
	return nil
}
