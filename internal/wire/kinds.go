// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

// ActionKind names one mutation on the board tree. The string values are the
// action_type field of the websocket envelope and match the action names the
// web client dispatches, so both clients can share a board.
type ActionKind string

const (
	ActionUpdateBoard ActionKind = "board/updateBoard/fulfilled"

	ActionCreateList ActionKind = "board/createList/fulfilled"
	ActionUpdateList ActionKind = "board/updateList/fulfilled"
	ActionMoveList   ActionKind = "board/moveList/fulfilled"
	ActionDeleteList ActionKind = "board/deleteList/fulfilled"

	ActionCreateCard ActionKind = "board/createCard/fulfilled"
	ActionUpdateCard ActionKind = "board/updateCard/fulfilled"
	ActionMoveCard   ActionKind = "board/moveCard/fulfilled"
	ActionDeleteCard ActionKind = "board/deleteCard/fulfilled"

	ActionAddChecklist    ActionKind = "board/addChecklist/fulfilled"
	ActionUpdateChecklist ActionKind = "board/updateChecklist/fulfilled"
	ActionDeleteChecklist ActionKind = "board/deleteChecklist/fulfilled"

	ActionAddChecklistItem    ActionKind = "board/addChecklistItem/fulfilled"
	ActionUpdateChecklistItem ActionKind = "board/updateChecklistItem/fulfilled"
	ActionDeleteChecklistItem ActionKind = "board/deleteChecklistItem/fulfilled"

	ActionAddComment    ActionKind = "board/addComment/fulfilled"
	ActionUpdateComment ActionKind = "board/updateComment/fulfilled"
	ActionDeleteComment ActionKind = "board/deleteComment/fulfilled"

	ActionAddAttachment    ActionKind = "board/addAttachment/fulfilled"
	ActionDeleteAttachment ActionKind = "board/deleteAttachment/fulfilled"

	ActionCreateLabel ActionKind = "board/createLabel/fulfilled"
	ActionUpdateLabel ActionKind = "board/updateLabel/fulfilled"
	ActionDeleteLabel ActionKind = "board/deleteLabel/fulfilled"

	ActionAddMember    ActionKind = "board/addMember/fulfilled"
	ActionUpdateMember ActionKind = "board/updateMember/fulfilled"
	ActionRemoveMember ActionKind = "board/removeMember/fulfilled"

	// ActionHeartbeat is reserved for keepalive envelopes. It is never
	// broadcast as a mutation and never reaches the merge engine.
	ActionHeartbeat ActionKind = "realtime/heartbeat"
)

// kindClass groups kinds by the payload shape they carry.
type kindClass int

const (
	classUnknown kindClass = iota
	classEntity            // record with numeric id
	classDelete            // bare numeric id
	classPositional        // record with numeric id and ws_meta
	classHeartbeat
)

var kindClasses = map[ActionKind]kindClass{
	ActionUpdateBoard: classEntity,

	ActionCreateList: classEntity,
	ActionUpdateList: classPositional,
	ActionMoveList:   classPositional,
	ActionDeleteList: classDelete,

	ActionCreateCard: classEntity,
	ActionUpdateCard: classEntity,
	ActionMoveCard:   classPositional,
	ActionDeleteCard: classDelete,

	ActionAddChecklist:    classPositional,
	ActionUpdateChecklist: classEntity,
	ActionDeleteChecklist: classDelete,

	ActionAddChecklistItem:    classPositional,
	ActionUpdateChecklistItem: classEntity,
	ActionDeleteChecklistItem: classPositional,

	ActionAddComment:    classPositional,
	ActionUpdateComment: classEntity,
	ActionDeleteComment: classDelete,

	ActionAddAttachment:    classEntity,
	ActionDeleteAttachment: classDelete,

	ActionCreateLabel: classEntity,
	ActionUpdateLabel: classEntity,
	ActionDeleteLabel: classDelete,

	ActionAddMember:    classEntity,
	ActionUpdateMember: classEntity,
	ActionRemoveMember: classDelete,

	ActionHeartbeat: classHeartbeat,
}

// Known reports whether k belongs to the closed set of action kinds.
func (k ActionKind) Known() bool {
	_, ok := kindClasses[k]
	return ok
}

// Positional reports whether outgoing payloads of kind k carry ws_meta.
func (k ActionKind) Positional() bool {
	return kindClasses[k] == classPositional
}

// Broadcastable reports whether a fulfilled mutation of kind k is sent to
// peers.
func (k ActionKind) Broadcastable() bool {
	c := kindClasses[k]
	return c != classUnknown && c != classHeartbeat
}

// String implements fmt.Stringer.
func (k ActionKind) String() string { return string(k) }

// AllActionKinds returns every broadcastable kind, in declaration order.
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionUpdateBoard,
		ActionCreateList, ActionUpdateList, ActionMoveList, ActionDeleteList,
		ActionCreateCard, ActionUpdateCard, ActionMoveCard, ActionDeleteCard,
		ActionAddChecklist, ActionUpdateChecklist, ActionDeleteChecklist,
		ActionAddChecklistItem, ActionUpdateChecklistItem, ActionDeleteChecklistItem,
		ActionAddComment, ActionUpdateComment, ActionDeleteComment,
		ActionAddAttachment, ActionDeleteAttachment,
		ActionCreateLabel, ActionUpdateLabel, ActionDeleteLabel,
		ActionAddMember, ActionUpdateMember, ActionRemoveMember,
	}
}
