// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/boardsync/internal/metrics"
)

type socketState int

const (
	stateConnecting socketState = iota
	stateOpen
	stateClosing
	stateClosed
)

// socket is one dial attempt and, once open, its connection. The manual
// flag is set before any requested close so the close handler knows not to
// reconnect.
type socket struct {
	boardID int64
	ctx     context.Context
	cancel  context.CancelFunc
	manual  atomic.Bool

	mu    sync.Mutex
	conn  *websocket.Conn
	state socketState

	// wmu serializes data frames. It is never held together with mu, so a
	// slow peer does not block state checks or shutdown.
	wmu sync.Mutex
}

func (s *socket) open(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.state = stateOpen
	s.mu.Unlock()
}

func (s *socket) connection() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *socket) alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateConnecting || s.state == stateOpen
}

func (s *socket) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateOpen
}

func (s *socket) write(data []byte, timeout time.Duration) error {
	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	if state != stateOpen {
		metrics.RecordSend("not_open")
		return ErrNotOpen
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		metrics.RecordSend("write")
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		metrics.RecordSend("write")
		// The read loop sees the broken connection and schedules the reconnect.
		_ = conn.Close()
		return fmt.Errorf("write message: %w", err)
	}
	metrics.RecordSend("")
	return nil
}

// shutdown starts a graceful close: it sends a close frame and lets the read
// loop wait up to closeGrace for the peer's reply. A pending dial is
// cancelled. WriteControl may run alongside a data write, so shutdown does
// not take wmu.
func (s *socket) shutdown() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		if s.state == stateConnecting {
			s.state = stateClosed
		}
		return
	}
	s.state = stateClosing
	deadline := time.Now().Add(closeGrace)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := s.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		_ = s.conn.Close()
		return
	}
	_ = s.conn.SetReadDeadline(deadline)
}

// closed releases the connection after the read loop ends.
func (s *socket) closed() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateClosed
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
