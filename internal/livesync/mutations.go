// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"context"
	"maps"

	"github.com/tomtom215/boardsync/internal/boardapi"
	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// CardAPI is the REST side of card, comment and checklist item edits.
type CardAPI interface {
	CreateCard(ctx context.Context, in boardapi.CardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, id int64, fields map[string]any) (*models.Card, error)
	DeleteCard(ctx context.Context, id int64) error
	AddComment(ctx context.Context, cardID int64, text string) (*models.Comment, error)
	AddChecklistItem(ctx context.Context, checklistID int64, text string) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, args wire.DeleteChecklistItemArgs) error
}

// Mutations runs card edits through a Runner so every confirmed edit is
// merged and broadcast. Creations have no id until the server answers, so
// they are applied on confirmation only.
type Mutations struct {
	runner *Runner
	api    CardAPI
}

// NewMutations returns a Mutations.
func NewMutations(runner *Runner, api CardAPI) *Mutations {
	return &Mutations{runner: runner, api: api}
}

// CreateCard creates a card at the end of in.ListID.
func (m *Mutations) CreateCard(ctx context.Context, in boardapi.CardInput) (*models.Card, error) {
	return runTyped(ctx, m.runner, Request{
		Kind: wire.ActionCreateCard,
	}, func(ctx context.Context) (*models.Card, error) {
		return m.api.CreateCard(ctx, in)
	})
}

// UpdateCard patches fields of card id. The patch is shown before the
// request completes.
func (m *Mutations) UpdateCard(ctx context.Context, id int64, fields map[string]any) (*models.Card, error) {
	patch := make(coerce.Record, len(fields)+1)
	maps.Copy(patch, fields)
	patch["id"] = float64(id)
	list, _ := coerce.RefID(patch, "list")

	return runTyped(ctx, m.runner, Request{
		Kind:       wire.ActionUpdateCard,
		Optimistic: wire.CardUpsert{Action: wire.ActionUpdateCard, ID: id, ListID: list, Patch: patch},
	}, func(ctx context.Context) (*models.Card, error) {
		return m.api.UpdateCard(ctx, id, fields)
	})
}

// DeleteCard removes card id.
func (m *Mutations) DeleteCard(ctx context.Context, id int64) error {
	_, err := m.runner.Run(ctx, Request{
		Kind:       wire.ActionDeleteCard,
		Optimistic: wire.CardRemoval{ID: id},
		Do: func(ctx context.Context) (any, error) {
			if err := m.api.DeleteCard(ctx, id); err != nil {
				return nil, err
			}
			// Deletions broadcast the bare id.
			return id, nil
		},
	})
	return err
}

// AddComment posts text on card cardID.
func (m *Mutations) AddComment(ctx context.Context, cardID int64, text string) (*models.Comment, error) {
	return runTyped(ctx, m.runner, Request{
		Kind: wire.ActionAddComment,
		Args: wire.AddCommentArgs{CardID: cardID},
	}, func(ctx context.Context) (*models.Comment, error) {
		return m.api.AddComment(ctx, cardID, text)
	})
}

// AddChecklistItem appends text to checklist checklistID.
func (m *Mutations) AddChecklistItem(ctx context.Context, checklistID int64, text string) (*models.ChecklistItem, error) {
	return runTyped(ctx, m.runner, Request{
		Kind: wire.ActionAddChecklistItem,
		Args: wire.AddChecklistItemArgs{ChecklistID: checklistID},
	}, func(ctx context.Context) (*models.ChecklistItem, error) {
		return m.api.AddChecklistItem(ctx, checklistID, text)
	})
}

// DeleteChecklistItem removes an item from its checklist.
func (m *Mutations) DeleteChecklistItem(ctx context.Context, args wire.DeleteChecklistItemArgs) error {
	_, err := m.runner.Run(ctx, Request{
		Kind:       wire.ActionDeleteChecklistItem,
		Optimistic: wire.ChecklistItemRemoval{ID: args.ItemID, ChecklistID: args.ChecklistID},
		Args:       args,
		Do: func(ctx context.Context) (any, error) {
			return nil, m.api.DeleteChecklistItem(ctx, args)
		},
	})
	return err
}

// runTyped runs req with do as its call and returns do's typed result.
func runTyped[T any](ctx context.Context, r *Runner, req Request, do func(context.Context) (*T, error)) (*T, error) {
	var out *T
	req.Do = func(ctx context.Context) (any, error) {
		v, err := do(ctx)
		if err != nil {
			return nil, err
		}
		out = v
		return v, nil
	}
	if _, err := r.Run(ctx, req); err != nil {
		return nil, err
	}
	return out, nil
}
