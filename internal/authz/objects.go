// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package authz

import "github.com/tomtom215/boardsync/internal/wire"

var objects = map[wire.ActionKind]string{
	wire.ActionUpdateBoard: "board",

	wire.ActionCreateList: "list",
	wire.ActionUpdateList: "list",
	wire.ActionMoveList:   "list",
	wire.ActionDeleteList: "list",

	wire.ActionCreateCard: "card",
	wire.ActionUpdateCard: "card",
	wire.ActionMoveCard:   "card",
	wire.ActionDeleteCard: "card",

	wire.ActionAddChecklist:        "checklist",
	wire.ActionUpdateChecklist:     "checklist",
	wire.ActionDeleteChecklist:     "checklist",
	wire.ActionAddChecklistItem:    "checklist",
	wire.ActionUpdateChecklistItem: "checklist",
	wire.ActionDeleteChecklistItem: "checklist",

	wire.ActionAddComment:    "comment",
	wire.ActionUpdateComment: "comment",
	wire.ActionDeleteComment: "comment",

	wire.ActionAddAttachment:    "attachment",
	wire.ActionDeleteAttachment: "attachment",

	wire.ActionCreateLabel: "label",
	wire.ActionUpdateLabel: "label",
	wire.ActionDeleteLabel: "label",

	wire.ActionAddMember:    "member",
	wire.ActionUpdateMember: "member",
	wire.ActionRemoveMember: "member",
}

// ObjectFor returns the policy object a mutation kind writes to.
func ObjectFor(kind wire.ActionKind) (string, bool) {
	obj, ok := objects[kind]
	return obj, ok
}
