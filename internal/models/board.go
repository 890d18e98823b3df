// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package models

import "time"

// Role is a board membership role. RoleOwner is never stored on a
// Membership; it is derived from Board.Owner.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleViewer    Role = "viewer"
)

// Valid reports whether r is a role a membership row may carry.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleViewer:
		return true
	}
	return false
}

// User is the public projection of an account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Membership grants Role on a board to User.
type Membership struct {
	ID   int64 `json:"id"`
	User User  `json:"user"`
	Role Role  `json:"role"`
}

// Label is owned by a board and referenced by id from cards.
type Label struct {
	ID    int64  `json:"id"`
	Board Ref    `json:"board,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Board is the root of the synchronized tree.
type Board struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Background  string        `json:"background,omitempty"`
	Owner       User          `json:"owner"`
	Memberships []*Membership `json:"memberships"`
	Labels      []*Label      `json:"labels"`
	Lists       []*List       `json:"lists"`
}

// List is an ordered column of cards.
type List struct {
	ID         int64   `json:"id"`
	Board      Ref     `json:"board"`
	Title      string  `json:"title"`
	Order      int     `json:"order"`
	IsArchived bool    `json:"is_archived"`
	Cards      []*Card `json:"cards"`
}

// Card is the unit of work on a board.
type Card struct {
	ID          int64         `json:"id"`
	List        Ref           `json:"list"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	DueDate     *time.Time    `json:"due_date"`
	IsCompleted bool          `json:"is_completed"`
	IsArchived  bool          `json:"is_archived"`
	Color       string        `json:"color,omitempty"`
	Members     []User        `json:"members"`
	Labels      []Label       `json:"labels"`
	Checklists  []*Checklist  `json:"checklists"`
	Comments    []*Comment    `json:"comments"`
	Attachments []*Attachment `json:"attachments"`
}

// Checklist groups ordered items on a card.
type Checklist struct {
	ID    int64            `json:"id"`
	Card  Ref              `json:"card"`
	Title string           `json:"title"`
	Items []*ChecklistItem `json:"items"`
}

// ChecklistItem is one line of a checklist.
type ChecklistItem struct {
	ID        int64  `json:"id"`
	Checklist Ref    `json:"checklist,omitempty"`
	Text      string `json:"text"`
	IsChecked bool   `json:"is_checked"`
	Order     int    `json:"order"`
}

// Comment is a note left on a card.
type Comment struct {
	ID        int64     `json:"id"`
	Card      Ref       `json:"card"`
	Author    User      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a file uploaded to a card.
type Attachment struct {
	ID         int64     `json:"id"`
	Card       Ref       `json:"card"`
	File       string    `json:"file"`
	Name       string    `json:"name"`
	UploadedBy User      `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}
