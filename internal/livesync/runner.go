// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

// Authorizer decides whether role may perform kind.
type Authorizer interface {
	Authorize(role models.Role, kind wire.ActionKind) error
}

// BoardFetcher loads the authoritative tree.
type BoardFetcher interface {
	FetchBoard(ctx context.Context, boardID int64) (*models.Board, error)
}

// Request is one local mutation.
type Request struct {
	Kind wire.ActionKind
	// Optimistic, when set, is applied before Do is called.
	Optimistic wire.Mutation
	// Args are the request arguments, used to build ws_meta for positional
	// kinds (wire.MoveCardArgs and friends).
	Args any
	// Do performs the CRUD call and returns its result.
	Do func(ctx context.Context) (any, error)
}

// Runner drives local mutations through optimistic apply, request and
// confirmation or refetch.
type Runner struct {
	store  *Store
	authz  Authorizer
	boards BoardFetcher
	logger zerolog.Logger
}

// NewRunner returns a Runner. authz may be nil to skip permission checks.
func NewRunner(store *Store, authz Authorizer, boards BoardFetcher) *Runner {
	return &Runner{
		store:  store,
		authz:  authz,
		boards: boards,
		logger: logging.WithComponent("livesync"),
	}
}

// Run performs req. A denied request leaves the tree untouched. A failed
// request is reported, the board is refetched and the request error is
// returned.
func (r *Runner) Run(ctx context.Context, req Request) (any, error) {
	if req.Do == nil {
		return nil, errors.New("request has no call")
	}
	if r.authz != nil {
		role, _ := r.store.Role()
		if err := r.authz.Authorize(role, req.Kind); err != nil {
			return nil, err
		}
	}
	boardID := r.store.BoardID()

	if req.Optimistic != nil {
		if err := r.store.Dispatch(MutationOptimistic{Mutation: req.Optimistic}); err != nil {
			return nil, err
		}
	}

	result, err := req.Do(ctx)
	if err != nil {
		_ = r.store.Dispatch(MutationRejected{Kind: req.Kind, Err: err})
		r.refetch(ctx, boardID)
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}

	if err := r.store.Dispatch(MutationFulfilled{Kind: req.Kind, Result: result, Args: req.Args}); err != nil {
		return result, err
	}
	return result, nil
}

// refetch replaces the tree with the server's copy, discarding the
// unconfirmed optimistic change.
func (r *Runner) refetch(ctx context.Context, boardID int64) {
	if r.boards == nil || boardID == 0 {
		return
	}
	b, err := r.boards.FetchBoard(ctx, boardID)
	if err != nil {
		r.logger.Error().Err(err).Int64("board_id", boardID).Msg("refetch after failed mutation failed, board may be stale")
		return
	}
	if err := r.store.Dispatch(BoardLoaded{Board: b}); err != nil {
		r.logger.Error().Err(err).Int64("board_id", boardID).Msg("could not install refetched board")
	}
}

// Load begins loading boardID and installs the fetched tree.
func (r *Runner) Load(ctx context.Context, boardID int64) error {
	if err := r.store.Dispatch(BeginLoadBoard{BoardID: boardID}); err != nil {
		return err
	}
	if r.boards == nil {
		return nil
	}
	b, err := r.boards.FetchBoard(ctx, boardID)
	if err != nil {
		return fmt.Errorf("fetch board %d: %w", boardID, err)
	}
	return r.store.Dispatch(BoardLoaded{Board: b})
}
