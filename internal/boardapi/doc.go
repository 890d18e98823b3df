// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package boardapi is the REST client for the board backend.

Every call carries "Authorization: Token <token>" and runs behind a circuit
breaker named "board-api". Transport errors and 5xx responses count as
breaker failures; 4xx responses do not, since they describe the request
rather than the backend's health.

Endpoints:

	GET    /api/boards/{id}/              FetchBoard
	POST   /api/cards/                    CreateCard
	PATCH  /api/cards/{id}/               UpdateCard
	POST   /api/cards/{id}/move/          MoveCard
	DELETE /api/cards/{id}/               DeleteCard
	POST   /api/lists/{id}/move/          MoveList
	POST   /api/comments/                 AddComment
	POST   /api/checklist-items/          AddChecklistItem
	DELETE /api/checklist-items/{id}/     DeleteChecklistItem

A 404 is reported as ErrNotFound; other non-2xx responses as *StatusError.
*/
package boardapi
