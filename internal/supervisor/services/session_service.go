// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/boardsync/internal/boardapi"
	"github.com/tomtom215/boardsync/internal/livesync"
	"github.com/tomtom215/boardsync/internal/logging"
)

// BoardLoader opens a board: starts the realtime session and installs the
// fetched tree. Satisfied by *livesync.Runner.
type BoardLoader interface {
	Load(ctx context.Context, boardID int64) error
}

// Dispatcher accepts store actions. Satisfied by *livesync.Store.
type Dispatcher interface {
	Dispatch(a livesync.Action) error
}

// BoardSessionService keeps one board open for the lifetime of its context.
//
// A failed load is returned to the supervisor, which retries with backoff.
// A board that does not exist terminates the tree, since retrying cannot
// help. On shutdown the board is closed, which also closes its socket.
type BoardSessionService struct {
	loader  BoardLoader
	store   Dispatcher
	boardID int64
}

// NewBoardSessionService creates a session service for boardID.
func NewBoardSessionService(loader BoardLoader, store Dispatcher, boardID int64) *BoardSessionService {
	return &BoardSessionService{loader: loader, store: store, boardID: boardID}
}

// Serve implements suture.Service.
func (s *BoardSessionService) Serve(ctx context.Context) error {
	if err := s.loader.Load(ctx, s.boardID); err != nil {
		s.close()
		if errors.Is(err, boardapi.ErrNotFound) {
			logging.Error().Err(err).Int64("board_id", s.boardID).Msg("board does not exist")
			return fmt.Errorf("%w: %w", suture.ErrTerminateSupervisorTree, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("load board %d: %w", s.boardID, err)
	}

	logging.Info().Int64("board_id", s.boardID).Msg("board session open")
	<-ctx.Done()
	s.close()
	return ctx.Err()
}

func (s *BoardSessionService) close() {
	if err := s.store.Dispatch(livesync.BoardClosed{}); err != nil {
		logging.Warn().Err(err).Int64("board_id", s.boardID).Msg("closing board failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *BoardSessionService) String() string {
	return fmt.Sprintf("board-session-%d", s.boardID)
}
