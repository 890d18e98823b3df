// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package livesync

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/boardsync/internal/boardstate"
	"github.com/tomtom215/boardsync/internal/coerce"
	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/realtime"
	"github.com/tomtom215/boardsync/internal/wire"
)

// ErrNoBoard is returned when a mutation is dispatched while no board tree
// is loaded.
var ErrNoBoard = errors.New("no board is loaded")

// Conn is the part of realtime.Manager the store drives.
type Conn interface {
	Connect(boardID int64, token string)
	Send(v any) error
	Close()
	MarkHeartbeatSeen(at time.Time)
}

// StoreConfig wires a Store.
type StoreConfig struct {
	Conn Conn
	// Token resolves the current auth token. An empty token skips the
	// socket connect.
	Token func() (string, error)
	// UserID returns the signed in user's id, or 0.
	UserID func() int64
	// OnChange is called after the tree changed, with the store lock held.
	// It must not dispatch.
	OnChange func(kind wire.ActionKind)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Store serializes every change to the open board's tree.
type Store struct {
	cfg    StoreConfig
	logger zerolog.Logger

	mu      sync.Mutex
	boardID int64
	state   *boardstate.State

	// outbox holds confirmed broadcasts. They are written after mu is
	// released, in merge order, by whichever dispatch finds sending unset.
	outbox  []wire.Envelope
	sending bool
}

// NewStore returns an empty Store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UserID == nil {
		cfg.UserID = func() int64 { return 0 }
	}
	return &Store{
		cfg:    cfg,
		logger: logging.WithComponent("livesync"),
	}
}

// Dispatch runs a through the pipeline. Only mutations against a missing
// board return an error; bad inbound frames are logged and dropped.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	err := s.dispatchLocked(a)
	if s.sending || len(s.outbox) == 0 {
		s.mu.Unlock()
		return err
	}
	s.sending = true
	for len(s.outbox) > 0 {
		batch := s.outbox
		s.outbox = nil
		s.mu.Unlock()
		for _, env := range batch {
			s.broadcast(env)
		}
		s.mu.Lock()
	}
	s.sending = false
	s.mu.Unlock()
	return err
}

// HandleMessage dispatches an inbound frame. It matches the signature of
// realtime.Config.OnMessage.
func (s *Store) HandleMessage(data []byte) {
	_ = s.Dispatch(InboundMessage{Data: data})
}

// BoardID returns the board being loaded or shown, or 0.
func (s *Store) BoardID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardID
}

// Loaded reports whether a tree is installed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil
}

// Snapshot returns a deep copy of the tree, or nil when none is loaded.
func (s *Store) Snapshot() *models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	var out models.Board
	if err := coerce.Into(s.state.Board(), &out); err != nil {
		s.logger.Error().Err(err).Msg("failed to copy board snapshot")
		return nil
	}
	return &out
}

// Role returns the signed in user's role on the loaded board.
func (s *Store) Role() (models.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return "", false
	}
	return s.state.Board().RoleOf(s.cfg.UserID())
}

func (s *Store) dispatchLocked(a Action) error {
	switch a := a.(type) {
	case BeginLoadBoard:
		s.beginLoad(a.BoardID)
	case BoardLoaded:
		s.install(a.Board)
	case MutationOptimistic:
		if s.state == nil {
			return ErrNoBoard
		}
		s.apply(a.Mutation, "optimistic")
	case MutationFulfilled:
		return s.fulfilled(a)
	case MutationRejected:
		metrics.RecordRollback(string(a.Kind))
		s.logger.Warn().Err(a.Err).Str("action", string(a.Kind)).Int64("board_id", s.boardID).
			Msg("mutation request failed, local state is unconfirmed")
	case InboundMessage:
		s.inbound(a.Data)
	case Reconcile:
		s.reconcile(a.Kind, a.Payload)
	case BoardClosed:
		s.teardown("board closed")
	case Logout:
		s.teardown("logout")
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
	return nil
}

func (s *Store) beginLoad(boardID int64) {
	s.boardID = boardID
	s.state = nil
	s.outbox = nil

	var (
		token string
		err   error
	)
	if s.cfg.Token != nil {
		token, err = s.cfg.Token()
	}
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Int64("board_id", boardID).Msg("cannot resolve auth token, board will not be live")
	case token == "":
		s.logger.Info().Int64("board_id", boardID).Msg("no auth token, board will not be live")
	case s.cfg.Conn != nil:
		s.cfg.Conn.Connect(boardID, token)
	}
}

func (s *Store) install(b *models.Board) {
	if b == nil {
		return
	}
	if s.boardID != 0 && b.ID != s.boardID {
		s.logger.Debug().Int64("board_id", b.ID).Int64("current_board_id", s.boardID).Msg("ignoring stale board load")
		return
	}
	s.boardID = b.ID
	if s.state == nil {
		s.state = boardstate.New(b)
	} else {
		s.state.Replace(b)
	}
	s.changed(wire.ActionUpdateBoard)
}

func (s *Store) apply(m wire.Mutation, source string) bool {
	changed := s.state.Apply(m)
	metrics.RecordMerge(string(m.Kind()), changed)
	if changed {
		s.changed(m.Kind())
	}
	s.logger.Debug().Str("action", string(m.Kind())).Str("source", source).Bool("changed", changed).Msg("merged")
	return changed
}

func (s *Store) changed(kind wire.ActionKind) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(kind)
	}
}

// fulfilled merges a confirmed result and broadcasts it. A result that does
// not survive validation is neither merged nor sent.
func (s *Store) fulfilled(a MutationFulfilled) error {
	if s.state == nil {
		return ErrNoBoard
	}
	payload := wire.BuildOutgoingPayload(a.Kind, a.Result, a.Args)
	m, err := wire.Decode(a.Kind, payload)
	if err != nil {
		metrics.RecordRejected("outgoing_invalid")
		s.logger.Warn().Err(err).Str("action", string(a.Kind)).Msg("confirmed result failed validation, not broadcasting")
		return nil
	}
	s.apply(m, "fulfilled")

	if !a.Kind.Broadcastable() || s.cfg.Conn == nil {
		return nil
	}
	s.outbox = append(s.outbox, wire.NewEnvelope(a.Kind, payload, s.boardID, s.cfg.UserID()))
	return nil
}

// broadcast writes env to the socket. It runs without s.mu held.
func (s *Store) broadcast(env wire.Envelope) {
	if err := s.cfg.Conn.Send(env); err != nil {
		if errors.Is(err, realtime.ErrNotOpen) {
			s.logger.Debug().Str("action", string(env.ActionType)).Msg("socket not open, broadcast dropped")
		} else {
			s.logger.Info().Err(err).Str("action", string(env.ActionType)).Msg("broadcast failed")
		}
	}
}

func (s *Store) inbound(data []byte) {
	env, err := wire.ParseEnvelope(data)
	if err != nil {
		metrics.RecordRejected("malformed")
		s.logger.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed socket message")
		return
	}
	if me := s.cfg.UserID(); me != 0 && env.SenderID == me {
		if env.IsHeartbeat() && s.cfg.Conn != nil {
			s.cfg.Conn.MarkHeartbeatSeen(s.cfg.Now())
		}
		metrics.RecordEchoSuppressed()
		return
	}
	if env.IsHeartbeat() {
		return
	}
	if s.boardID != 0 && env.BoardID != s.boardID {
		metrics.RecordRejected("other_board")
		s.logger.Warn().Int64("board_id", env.BoardID).Int64("current_board_id", s.boardID).
			Msg("dropping message for another board")
		return
	}
	if err := wire.CheckPayload(env.ActionType, env.Payload); err != nil {
		metrics.RecordRejected("invalid_payload")
		s.logger.Warn().Err(err).Str("action", string(env.ActionType)).Int64("sender_id", env.SenderID).
			Msg("dropping invalid socket payload")
		return
	}
	_ = s.dispatchLocked(Reconcile{Kind: env.ActionType, Payload: env.Payload})
}

func (s *Store) reconcile(kind wire.ActionKind, payload any) {
	if s.state == nil {
		s.logger.Debug().Str("action", string(kind)).Msg("no board loaded, skipping reconcile")
		return
	}
	m, err := wire.Decode(kind, payload)
	if err != nil {
		metrics.RecordRejected("invalid_payload")
		s.logger.Warn().Err(err).Str("action", string(kind)).Msg("dropping undecodable payload")
		return
	}
	s.apply(m, "remote")
}

func (s *Store) teardown(reason string) {
	if s.cfg.Conn != nil {
		s.cfg.Conn.Close()
	}
	s.logger.Info().Int64("board_id", s.boardID).Str("reason", reason).Msg("board session closed")
	s.boardID = 0
	s.state = nil
	s.outbox = nil
}
