// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package boardapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// CardInput is the body of CreateCard.
type CardInput struct {
	ListID      int64  `json:"list"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// FetchBoard loads the full tree of board id.
func (c *Client) FetchBoard(ctx context.Context, id int64) (*models.Board, error) {
	var b models.Board
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/boards/%d/", id), "board", nil, &b); err != nil {
		return nil, fmt.Errorf("fetch board %d: %w", id, err)
	}
	return &b, nil
}

// CreateCard creates a card at the end of its list.
func (c *Client) CreateCard(ctx context.Context, in CardInput) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPost, "/api/cards/", "cards", in, &card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return &card, nil
}

// UpdateCard patches the given fields of card id.
func (c *Client) UpdateCard(ctx context.Context, id int64, fields map[string]any) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/cards/%d/", id), "card", fields, &card); err != nil {
		return nil, fmt.Errorf("update card %d: %w", id, err)
	}
	return &card, nil
}

// MoveCard moves a card to a list at a 1-based order.
func (c *Client) MoveCard(ctx context.Context, args wire.MoveCardArgs) (*models.Card, error) {
	body := map[string]any{"list": args.ListID, "order": args.Order}
	var card models.Card
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/cards/%d/move/", args.CardID), "card_move", body, &card); err != nil {
		return nil, fmt.Errorf("move card %d: %w", args.CardID, err)
	}
	return &card, nil
}

// DeleteCard deletes card id.
func (c *Client) DeleteCard(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cards/%d/", id), "card", nil, nil); err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	return nil
}

// MoveList moves a list to a 1-based order among the board's active lists.
func (c *Client) MoveList(ctx context.Context, args wire.MoveListArgs) (*models.List, error) {
	body := map[string]any{"order": args.Order}
	var list models.List
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/lists/%d/move/", args.ListID), "list_move", body, &list); err != nil {
		return nil, fmt.Errorf("move list %d: %w", args.ListID, err)
	}
	return &list, nil
}

// AddComment posts a comment on card cardID.
func (c *Client) AddComment(ctx context.Context, cardID int64, text string) (*models.Comment, error) {
	body := map[string]any{"card": cardID, "text": text}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, "/api/comments/", "comments", body, &comment); err != nil {
		return nil, fmt.Errorf("add comment to card %d: %w", cardID, err)
	}
	return &comment, nil
}

// AddChecklistItem appends an item to checklist checklistID.
func (c *Client) AddChecklistItem(ctx context.Context, checklistID int64, text string) (*models.ChecklistItem, error) {
	body := map[string]any{"checklist": checklistID, "text": text}
	var item models.ChecklistItem
	if err := c.do(ctx, http.MethodPost, "/api/checklist-items/", "checklist_items", body, &item); err != nil {
		return nil, fmt.Errorf("add item to checklist %d: %w", checklistID, err)
	}
	return &item, nil
}

// DeleteChecklistItem deletes an item.
func (c *Client) DeleteChecklistItem(ctx context.Context, args wire.DeleteChecklistItemArgs) error {
	path := fmt.Sprintf("/api/checklist-items/%d/", args.ItemID)
	if err := c.do(ctx, http.MethodDelete, path, "checklist_item", nil, nil); err != nil {
		return fmt.Errorf("delete checklist item %d: %w", args.ItemID, err)
	}
	return nil
}
