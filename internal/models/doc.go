// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package models defines the board tree shared by every Boardsync component.
//
// The hierarchy is Board → List → Card → (Checklist → ChecklistItem, Comment,
// Attachment). Labels belong to the board; cards embed a snapshot of each
// label they carry, keyed by id. Memberships grant a role to a user; the board
// owner is implicit and never appears as a membership row.
//
// JSON field names match the board REST API and the realtime wire payloads.
// Foreign keys (card.list, list.board, ...) are decoded with Ref so either a
// bare id or a nested {"id": n} object is accepted.
//
// Ordering: list.order is dense and 1-based among the non-archived lists of a
// board; card.order is dense and 1-based among the cards of a list that share
// the same archived flag. The merge engine in internal/boardstate restores
// both invariants after every structural change.
package models
