// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package drag turns drag-and-drop results into list and card move commands.
package drag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Draggable types.
const (
	TypeList = "list"
	TypeCard = "card"
)

// BoardDroppable is the droppable id of the board's list strip.
const BoardDroppable = "board"

// ErrBadIdentifier is returned for draggable or droppable ids that do not
// follow the "<type>-<id>" form.
var ErrBadIdentifier = errors.New("bad drag identifier")

// Location is a position inside a droppable container.
type Location struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// DropResult is what the drag library reports when a drag ends. Destination
// is nil when the item was dropped outside any container.
type DropResult struct {
	DraggableID string    `json:"draggableId"`
	Type        string    `json:"type"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
}

// Command is a move produced by a drop: *ListMove or *CardMove.
type Command interface {
	command()
}

// ListMove repositions a list on the board. Indexes are 0-based.
type ListMove struct {
	ListID int64
	From   int
	To     int
}

// CardMove moves a card within or across lists. Indexes are 0-based.
type CardMove struct {
	CardID     int64
	FromListID int64
	ToListID   int64
	From       int
	To         int
}

func (*ListMove) command() {}
func (*CardMove) command() {}

// ListDraggableID formats the draggable id of a list.
func ListDraggableID(id int64) string { return TypeList + "-" + strconv.FormatInt(id, 10) }

// CardDraggableID formats the draggable id of a card.
func CardDraggableID(id int64) string { return TypeCard + "-" + strconv.FormatInt(id, 10) }

// ListDroppableID formats the droppable id of a list's card area.
func ListDroppableID(id int64) string { return ListDraggableID(id) }

// parseID reads "<prefix>-<n>".
func parseID(s, prefix string) (int64, error) {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a %s id", ErrBadIdentifier, s, prefix)
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadIdentifier, s)
	}
	return n, nil
}

// Resolve converts r into a move command. It returns nil, nil when no move is
// needed: the item was dropped outside a container or back where it started.
func Resolve(r DropResult) (Command, error) {
	dst := r.Destination
	if dst == nil {
		return nil, nil
	}
	if dst.DroppableID == r.Source.DroppableID && dst.Index == r.Source.Index {
		return nil, nil
	}

	switch r.Type {
	case TypeList:
		id, err := parseID(r.DraggableID, TypeList)
		if err != nil {
			return nil, err
		}
		return &ListMove{ListID: id, From: r.Source.Index, To: dst.Index}, nil
	case TypeCard:
		id, err := parseID(r.DraggableID, TypeCard)
		if err != nil {
			return nil, err
		}
		from, err := parseID(r.Source.DroppableID, TypeList)
		if err != nil {
			return nil, err
		}
		to, err := parseID(dst.DroppableID, TypeList)
		if err != nil {
			return nil, err
		}
		return &CardMove{CardID: id, FromListID: from, ToListID: to, From: r.Source.Index, To: dst.Index}, nil
	}
	return nil, fmt.Errorf("%w: unknown drag type %q", ErrBadIdentifier, r.Type)
}
