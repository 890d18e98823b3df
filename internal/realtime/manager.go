// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/wire"
)

// ErrNotOpen is returned by Send when no socket is open. The message is
// dropped, not queued.
var ErrNotOpen = errors.New("board socket is not open")

// Config wires a Manager to its environment.
type Config struct {
	// URL builds the socket URL. Required.
	URL URLBuilder
	// TokenSource, when set, is consulted before each automatic reconnect so
	// a rotated token is picked up. Connect's token is used otherwise.
	TokenSource func() (string, error)
	// SenderID returns the current user's id for heartbeat envelopes.
	SenderID func() int64

	// OnMessage receives every inbound frame.
	OnMessage func(data []byte)
	// OnLifecycle receives lifecycle events in order.
	OnLifecycle func(Event)

	Policy            Policy
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	DialTimeout       time.Duration
	WriteTimeout      time.Duration

	// Dialer overrides the websocket dialer.
	Dialer *websocket.Dialer
}

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultHeartbeatTimeout  = 90 * time.Second
	defaultDialTimeout       = 10 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	closeGrace               = time.Second
)

func (c *Config) applyDefaults() {
	if c.Policy == (Policy{}) {
		c.Policy = DefaultPolicy()
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.Dialer == nil {
		c.Dialer = &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  c.DialTimeout,
			EnableCompression: true,
		}
	}
}

// Manager owns the board socket.
type Manager struct {
	cfg      Config
	logger   zerolog.Logger
	events   *eventQueue
	staleLog rate.Sometimes

	mu            sync.Mutex
	boardID       int64
	token         string
	sock          *socket
	attempt       int
	exhausted     bool
	timer         *time.Timer
	timerGen      uint64
	lastHeartbeat time.Time

	wg sync.WaitGroup
}

// New returns an idle Manager. Call Connect to open a socket and Shutdown
// when the process exits.
func New(cfg Config) (*Manager, error) {
	if cfg.URL == nil {
		return nil, errors.New("realtime: URL builder is required")
	}
	cfg.applyDefaults()
	m := &Manager{
		cfg:      cfg,
		logger:   logging.WithComponent("realtime"),
		events:   newEventQueue(),
		staleLog: rate.Sometimes{Interval: cfg.HeartbeatTimeout},
	}
	go m.events.run(m.report)
	return m, nil
}

// Connect opens a socket for boardID. It returns immediately; the dial runs
// in the background and its outcome is reported as lifecycle events.
//
// Connecting to the board that already has an open or pending socket does
// nothing. Connecting to another board closes the old socket as if Close had
// been called. Otherwise the attempt counter starts from zero.
func (m *Manager) Connect(boardID int64, token string) {
	m.mu.Lock()
	if s := m.sock; s != nil && s.boardID == boardID && s.alive() {
		m.mu.Unlock()
		return
	}
	old := m.sock
	if old != nil {
		old.manual.Store(true)
		m.emitLocked(Event{Kind: EventManualClose, BoardID: old.boardID})
		m.sock = nil
	}
	m.stopTimerLocked()
	m.boardID = boardID
	m.token = token
	m.attempt = 0
	m.exhausted = false
	m.openLocked()
	m.mu.Unlock()

	if old != nil {
		old.shutdown()
	}
}

// Close closes the socket without scheduling a reconnect, cancels pending
// timers and forgets the board.
func (m *Manager) Close() {
	m.mu.Lock()
	m.stopTimerLocked()
	s := m.sock
	board := m.boardID
	m.sock = nil
	m.boardID = 0
	m.token = ""
	m.attempt = 0
	m.exhausted = false
	if s != nil {
		s.manual.Store(true)
	}
	if board != 0 {
		m.emitLocked(Event{Kind: EventManualClose, BoardID: board})
	}
	m.mu.Unlock()

	if s != nil {
		s.shutdown()
	}
}

// Shutdown closes the socket and waits for the manager's goroutines, or for
// ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.Close()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		m.events.stop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsOpen reports whether a socket is open.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	s := m.sock
	m.mu.Unlock()
	return s != nil && s.isOpen()
}

// BoardID returns the board the manager is attached to, or 0.
func (m *Manager) BoardID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boardID
}

// Exhausted reports whether reconnection gave up.
func (m *Manager) Exhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exhausted
}

// Send encodes v and writes it to the open socket. When no socket is open the
// message is dropped and ErrNotOpen returned.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	s := m.sock
	m.mu.Unlock()
	if s == nil {
		metrics.RecordSend("not_open")
		return ErrNotOpen
	}
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordSend("encode")
		return fmt.Errorf("encode message: %w", err)
	}
	return s.write(data, m.cfg.WriteTimeout)
}

// MarkHeartbeatSeen records that a heartbeat echo arrived at at.
func (m *Manager) MarkHeartbeatSeen(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if at.After(m.lastHeartbeat) {
		m.lastHeartbeat = at
	}
}

// LastHeartbeat returns when the last heartbeat echo was seen.
func (m *Manager) LastHeartbeat() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHeartbeat
}

// openLocked starts a dial for the current board. Callers hold m.mu.
func (m *Manager) openLocked() {
	m.emitLocked(Event{Kind: EventConnectStart})
	u, err := m.cfg.URL(m.boardID, m.token)
	if err != nil {
		m.emitLocked(Event{Kind: EventError, Err: fmt.Errorf("build socket url: %w", err)})
		m.scheduleLocked()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &socket{boardID: m.boardID, ctx: ctx, cancel: cancel}
	m.sock = s
	m.wg.Add(1)
	go m.dial(s, u)
}

func (m *Manager) dial(s *socket, u string) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, m.cfg.DialTimeout)
	conn, resp, err := m.cfg.Dialer.DialContext(ctx, u, nil)
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	m.mu.Lock()
	if s.manual.Load() || m.sock != s {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("dial board socket (HTTP %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("dial board socket: %w", err)
		}
		m.sock = nil
		s.cancel()
		m.emitLocked(Event{Kind: EventError, BoardID: s.boardID, Err: err})
		m.scheduleLocked()
		m.mu.Unlock()
		return
	}

	s.open(conn)
	m.attempt = 0
	m.exhausted = false
	m.lastHeartbeat = time.Now()
	m.emitLocked(Event{Kind: EventOpen, BoardID: s.boardID})
	m.wg.Add(2)
	go m.readLoop(s)
	go m.heartbeatLoop(s)
	m.mu.Unlock()
}

func (m *Manager) readLoop(s *socket) {
	defer m.wg.Done()
	conn := s.connection()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(s, err)
			return
		}
		metrics.RecordReceive()
		if m.cfg.OnMessage != nil {
			m.cfg.OnMessage(data)
		}
	}
}

func (m *Manager) handleClose(s *socket, err error) {
	code, reason, clean := closeDetails(err)
	s.closed()

	m.mu.Lock()
	manual := s.manual.Load()
	m.emitLocked(Event{
		Kind:    EventClose,
		BoardID: s.boardID,
		Code:    code,
		Reason:  reason,
		Clean:   clean,
		Manual:  manual,
	})
	if m.sock == s {
		m.sock = nil
		if !manual {
			m.scheduleLocked()
		}
	}
	m.mu.Unlock()
}

func closeDetails(err error) (code int, reason string, clean bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return websocket.CloseAbnormalClosure, "", false
}

// scheduleLocked arms the reconnect timer, or gives up when the policy is
// exhausted. Callers hold m.mu.
func (m *Manager) scheduleLocked() {
	if m.boardID == 0 {
		return
	}
	if m.cfg.Policy.Exhausted(m.attempt) {
		m.exhausted = true
		m.emitLocked(Event{Kind: EventReconnectExhausted, Attempt: m.attempt})
		return
	}
	m.attempt++
	delay := m.cfg.Policy.Delay(m.attempt)
	m.emitLocked(Event{Kind: EventReconnectScheduled, Attempt: m.attempt, Delay: delay})

	m.stopTimerLocked()
	gen := m.timerGen
	m.timer = time.AfterFunc(delay, func() { m.fireReconnect(gen) })
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

func (m *Manager) fireReconnect(gen uint64) {
	var fresh string
	if m.cfg.TokenSource != nil {
		tok, err := m.cfg.TokenSource()
		if err != nil {
			m.logger.Warn().Err(err).Msg("token refresh before reconnect failed, reusing previous token")
		}
		fresh = tok
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.timerGen || m.sock != nil || m.boardID == 0 {
		return
	}
	m.timer = nil
	if fresh != "" {
		m.token = fresh
	}
	m.emitLocked(Event{Kind: EventReconnectAttempt, Attempt: m.attempt})
	m.openLocked()
}

func (m *Manager) heartbeatLoop(s *socket) {
	defer m.wg.Done()
	if m.cfg.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			var sender int64
			if m.cfg.SenderID != nil {
				sender = m.cfg.SenderID()
			}
			data, err := json.Marshal(wire.NewHeartbeat(s.boardID, sender, now))
			if err == nil {
				if err := s.write(data, m.cfg.WriteTimeout); err != nil {
					m.logger.Debug().Err(err).Msg("heartbeat not sent")
				}
			}
			m.checkStale(now)
		}
	}
}

func (m *Manager) checkStale(now time.Time) {
	if m.cfg.HeartbeatTimeout <= 0 {
		return
	}
	last := m.LastHeartbeat()
	if age := now.Sub(last); age > m.cfg.HeartbeatTimeout {
		m.staleLog.Do(func() {
			m.logger.Warn().
				Dur("since_last_echo", age).
				Dur("timeout", m.cfg.HeartbeatTimeout).
				Msg("heartbeat echo is stale")
		})
	}
}

func (m *Manager) emitLocked(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.BoardID == 0 {
		e.BoardID = m.boardID
	}
	m.events.push(e)
}

// report logs, counts and forwards one event. It runs on the event queue
// goroutine.
func (m *Manager) report(e Event) {
	metrics.RecordLifecycle(string(e.Kind))

	ev := m.logger.Debug()
	switch e.Kind {
	case EventOpen:
		ev = m.logger.Info()
		metrics.SetConnected(m.IsOpen())
	case EventClose:
		if !e.Manual {
			ev = m.logger.Warn()
		}
		ev = ev.Int("code", e.Code).Str("reason", e.Reason).Bool("clean", e.Clean).Bool("manual", e.Manual)
		metrics.SetConnected(m.IsOpen())
	case EventError:
		ev = m.logger.Warn().Err(e.Err)
	case EventReconnectScheduled:
		ev = ev.Int("attempt", e.Attempt).Dur("delay", e.Delay)
		metrics.RecordReconnectDelay(e.Delay)
	case EventReconnectAttempt:
		ev = ev.Int("attempt", e.Attempt)
	case EventReconnectExhausted:
		ev = m.logger.Warn().Int("attempt", e.Attempt)
	}
	ev.Int64("board_id", e.BoardID).Str("event", string(e.Kind)).Msg("board socket lifecycle")

	if m.cfg.OnLifecycle != nil {
		m.cfg.OnLifecycle(e)
	}
}
