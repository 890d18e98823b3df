// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package authz decides which board roles may perform which mutations, using
Casbin RBAC.

The embedded model takes (role, object, action) requests. Objects are entity
groups derived from the action kind:

	board       updateBoard
	list        createList, updateList, moveList, deleteList
	card        createCard, updateCard, moveCard, deleteCard
	checklist   checklist and checklist item kinds
	comment     comment kinds
	attachment  attachment kinds
	label       label kinds
	member      member kinds

The embedded policy:

	viewer      read only
	developer   viewer + write cards, checklists, comments, attachments
	admin       developer + write board, lists, labels, members
	owner       everything

A model or policy file on disk replaces the embedded one.

Usage:

	enf, err := authz.NewEnforcer(authz.Config{})
	if err != nil {
		return err
	}
	defer enf.Close()

	if err := enf.Authorize(models.RoleViewer, wire.ActionMoveCard); err != nil {
		// errors.Is(err, authz.ErrForbidden)
	}
*/
package authz
