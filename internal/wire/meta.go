// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

// MetaKey is the payload field that carries positional metadata.
const MetaKey = "ws_meta"

// Meta is the positional side-channel attached to payloads whose REST result
// alone cannot say where the entity went. Only the fields relevant to the
// action kind are set.
type Meta struct {
	DestListID   int64 `json:"destListId,omitempty"`
	DestIndex    *int  `json:"destIndex,omitempty"`
	SourceListID int64 `json:"sourceListId,omitempty"`
	ListID       int64 `json:"listId,omitempty"`
	ChecklistID  int64 `json:"checklistId,omitempty"`
	ItemID       int64 `json:"itemId,omitempty"`
	CardID       int64 `json:"cardId,omitempty"`
}

// Per-kind views of Meta. Each names the fields its kind requires.

type moveCardMeta struct {
	DestListID   int64 `json:"destListId" validate:"gt=0"`
	DestIndex    *int  `json:"destIndex" validate:"required,gte=0"`
	SourceListID int64 `json:"sourceListId" validate:"gte=0"`
}

type moveListMeta struct {
	ListID    int64 `json:"listId" validate:"gte=0"`
	DestIndex *int  `json:"destIndex" validate:"required,gte=0"`
}

type updateListMeta struct {
	ListID    int64 `json:"listId" validate:"gte=0"`
	DestIndex *int  `json:"destIndex" validate:"omitempty,gte=0"`
}

type checklistMeta struct {
	ChecklistID int64 `json:"checklistId" validate:"gt=0"`
	ItemID      int64 `json:"itemId" validate:"gte=0"`
}

type cardMeta struct {
	CardID int64 `json:"cardId" validate:"gt=0"`
}

// index converts a 1-based order into a 0-based destination index.
func index(order int) *int {
	i := max(order-1, 0)
	return &i
}
