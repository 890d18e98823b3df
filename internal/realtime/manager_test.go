// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/wire"
)

// mockBoardServer accepts board sockets and records what clients send.
type mockBoardServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	received chan []byte
	dials    atomic.Int32
	refuse   atomic.Bool

	mu     sync.Mutex
	paths  []string
	tokens []string
}

func newMockBoardServer(t *testing.T) *mockBoardServer {
	t.Helper()
	mock := &mockBoardServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:    make(chan *websocket.Conn, 8),
		received: make(chan []byte, 64),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.dials.Add(1)
		mock.mu.Lock()
		mock.paths = append(mock.paths, r.URL.Path)
		mock.tokens = append(mock.tokens, r.URL.Query().Get("token"))
		mock.mu.Unlock()

		if mock.refuse.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := mock.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mock.conns <- conn
		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				mock.received <- data
			}
		}()
	}))
	t.Cleanup(mock.server.Close)
	return mock
}

func (m *mockBoardServer) host() string {
	return strings.TrimPrefix(m.server.URL, "http://")
}

func (m *mockBoardServer) tokenAt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= len(m.tokens) {
		return ""
	}
	return m.tokens[i]
}

func (m *mockBoardServer) pathAt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= len(m.paths) {
		return ""
	}
	return m.paths[i]
}

func (m *mockBoardServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-m.conns:
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for client connection")
		return nil
	}
}

// nextMessage returns the next client frame that is not a heartbeat.
func (m *mockBoardServer) nextMessage(t *testing.T) []byte {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case data := <-m.received:
			env, err := wire.ParseEnvelope(data)
			if err == nil && env.IsHeartbeat() {
				continue
			}
			return data
		case <-deadline:
			t.Fatal("timed out waiting for client message")
			return nil
		}
	}
}

type eventLog struct {
	ch chan Event
}

func newEventLog() *eventLog {
	return &eventLog{ch: make(chan Event, 128)}
}

func (l *eventLog) record(e Event) {
	l.ch <- e
}

// waitFor skips events until one of kind arrives.
func (l *eventLog) waitFor(t *testing.T, kind EventKind) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-l.ch:
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
			return Event{}
		}
	}
}

// none fails if an event of kind arrives within d.
func (l *eventLog) none(t *testing.T, kind EventKind, d time.Duration) {
	t.Helper()
	deadline := time.After(d)
	for {
		select {
		case e := <-l.ch:
			if e.Kind == kind {
				t.Fatalf("unexpected %s event: %+v", kind, e)
			}
		case <-deadline:
			return
		}
	}
}

func testPolicy(maxAttempts int) Policy {
	return Policy{Base: 10 * time.Millisecond, Cap: 40 * time.Millisecond, MaxAttempts: maxAttempts}
}

func newTestManager(t *testing.T, mock *mockBoardServer, mutate func(*Config)) (*Manager, *eventLog) {
	t.Helper()
	events := newEventLog()
	cfg := Config{
		URL:               BoardURL(mock.host(), false),
		OnLifecycle:       events.record,
		Policy:            testPolicy(3),
		HeartbeatInterval: -1,
		DialTimeout:       2 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return m, events
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without URL builder")
	}
}

func TestConnectOpensAndDeliversMessages(t *testing.T) {
	mock := newMockBoardServer(t)
	got := make(chan []byte, 1)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.OnMessage = func(data []byte) { got <- data }
	})

	m.Connect(5, "secret")
	if e := events.waitFor(t, EventConnectStart); e.BoardID != 5 {
		t.Errorf("connect-start board = %d, want 5", e.BoardID)
	}
	events.waitFor(t, EventOpen)
	if !m.IsOpen() {
		t.Fatal("IsOpen = false after open event")
	}
	if m.BoardID() != 5 {
		t.Errorf("BoardID = %d, want 5", m.BoardID())
	}
	if p := mock.pathAt(0); p != "/ws/board/5/" {
		t.Errorf("path = %q", p)
	}
	if tok := mock.tokenAt(0); tok != "secret" {
		t.Errorf("token = %q", tok)
	}

	conn := mock.accept(t)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"board_updated"}`)); err != nil {
		t.Fatalf("server write: %v", err)
	}
	select {
	case data := <-got:
		if string(data) != `{"type":"board_updated"}` {
			t.Errorf("message = %s", data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestSendWhenNotOpenIsDropped(t *testing.T) {
	mock := newMockBoardServer(t)
	m, _ := newTestManager(t, mock, nil)

	if err := m.Send(map[string]int{"a": 1}); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("Send before connect = %v, want ErrNotOpen", err)
	}
	if n := mock.dials.Load(); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
}

func TestSendWritesJSON(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, nil)

	m.Connect(3, "tok")
	events.waitFor(t, EventOpen)
	mock.accept(t)

	env := wire.NewEnvelope(wire.ActionDeleteCard, int64(9), 3, 77)
	if err := m.Send(env); err != nil {
		t.Fatalf("Send: %v", err)
	}
	parsed, err := wire.ParseEnvelope(mock.nextMessage(t))
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if parsed.ActionType != wire.ActionDeleteCard || parsed.BoardID != 3 || parsed.SenderID != 77 {
		t.Errorf("envelope = %+v", parsed)
	}
}

func TestReconnectAfterServerClose(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, nil)

	m.Connect(8, "tok")
	events.waitFor(t, EventOpen)
	conn := mock.accept(t)

	msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "boom")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("server close: %v", err)
	}
	_ = conn.Close()

	closed := events.waitFor(t, EventClose)
	if closed.Code != websocket.CloseInternalServerErr || closed.Reason != "boom" || !closed.Clean || closed.Manual {
		t.Errorf("close event = %+v", closed)
	}
	scheduled := events.waitFor(t, EventReconnectScheduled)
	if scheduled.Attempt != 1 {
		t.Errorf("scheduled attempt = %d, want 1", scheduled.Attempt)
	}
	if scheduled.Delay != 10*time.Millisecond {
		t.Errorf("scheduled delay = %v, want 10ms", scheduled.Delay)
	}
	if e := events.waitFor(t, EventReconnectAttempt); e.Attempt != 1 {
		t.Errorf("attempt = %d, want 1", e.Attempt)
	}
	events.waitFor(t, EventOpen)
	mock.accept(t)

	if n := mock.dials.Load(); n != 2 {
		t.Errorf("dials = %d, want 2", n)
	}
	if p := mock.pathAt(1); p != "/ws/board/8/" {
		t.Errorf("reconnect path = %q", p)
	}
}

func TestReconnectUsesTokenSource(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.TokenSource = func() (string, error) { return "fresh", nil }
	})

	m.Connect(8, "stale")
	events.waitFor(t, EventOpen)
	_ = mock.accept(t).Close()

	events.waitFor(t, EventReconnectAttempt)
	events.waitFor(t, EventOpen)
	if tok := mock.tokenAt(0); tok != "stale" {
		t.Errorf("first token = %q", tok)
	}
	if tok := mock.tokenAt(1); tok != "fresh" {
		t.Errorf("reconnect token = %q", tok)
	}
}

func TestReconnectExhaustion(t *testing.T) {
	mock := newMockBoardServer(t)
	mock.refuse.Store(true)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.Policy = testPolicy(2)
	})

	m.Connect(4, "tok")
	if e := events.waitFor(t, EventError); e.Err == nil {
		t.Error("error event without error")
	}
	if e := events.waitFor(t, EventReconnectScheduled); e.Attempt != 1 {
		t.Errorf("first scheduled attempt = %d", e.Attempt)
	}
	if e := events.waitFor(t, EventReconnectScheduled); e.Attempt != 2 {
		t.Errorf("second scheduled attempt = %d", e.Attempt)
	}
	if e := events.waitFor(t, EventReconnectExhausted); e.Attempt != 2 {
		t.Errorf("exhausted attempt = %d", e.Attempt)
	}
	if !m.Exhausted() {
		t.Error("Exhausted = false")
	}
	events.none(t, EventReconnectAttempt, 100*time.Millisecond)
	if n := mock.dials.Load(); n != 3 {
		t.Errorf("dials = %d, want 3", n)
	}

	// An explicit connect starts over.
	mock.refuse.Store(false)
	m.Connect(4, "tok")
	events.waitFor(t, EventOpen)
	if m.Exhausted() {
		t.Error("Exhausted still true after reconnecting")
	}
}

func TestCloseDoesNotReconnect(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, nil)

	m.Connect(6, "tok")
	events.waitFor(t, EventOpen)
	mock.accept(t)

	m.Close()
	if e := events.waitFor(t, EventManualClose); e.BoardID != 6 {
		t.Errorf("manual-close board = %d", e.BoardID)
	}
	closed := events.waitFor(t, EventClose)
	if !closed.Manual {
		t.Errorf("close event not manual: %+v", closed)
	}
	events.none(t, EventReconnectScheduled, 100*time.Millisecond)

	if m.IsOpen() {
		t.Error("IsOpen = true after Close")
	}
	if m.BoardID() != 0 {
		t.Errorf("BoardID = %d after Close", m.BoardID())
	}
	if err := m.Send("x"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Send after Close = %v", err)
	}
}

func TestConnectSameBoardIsIdempotent(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, nil)

	m.Connect(2, "tok")
	m.Connect(2, "tok")
	events.waitFor(t, EventOpen)
	m.Connect(2, "tok")
	events.none(t, EventConnectStart, 100*time.Millisecond)

	if n := mock.dials.Load(); n != 1 {
		t.Errorf("dials = %d, want 1", n)
	}
}

func TestConnectOtherBoardReplacesSocket(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, nil)

	m.Connect(1, "tok")
	events.waitFor(t, EventOpen)
	mock.accept(t)

	m.Connect(2, "tok")
	if e := events.waitFor(t, EventManualClose); e.BoardID != 1 {
		t.Errorf("manual-close board = %d, want 1", e.BoardID)
	}
	if e := events.waitFor(t, EventOpen); e.BoardID != 2 {
		t.Errorf("open board = %d, want 2", e.BoardID)
	}
	mock.accept(t)

	if p := mock.pathAt(1); p != "/ws/board/2/" {
		t.Errorf("second path = %q", p)
	}
	if m.BoardID() != 2 {
		t.Errorf("BoardID = %d, want 2", m.BoardID())
	}
	events.none(t, EventReconnectScheduled, 100*time.Millisecond)
}

func TestHeartbeatIsSent(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.HeartbeatInterval = 20 * time.Millisecond
		c.SenderID = func() int64 { return 101 }
	})

	m.Connect(9, "tok")
	events.waitFor(t, EventOpen)
	mock.accept(t)

	select {
	case data := <-mock.received:
		env, err := wire.ParseEnvelope(data)
		if err != nil {
			t.Fatalf("ParseEnvelope: %v", err)
		}
		if !env.IsHeartbeat() || env.BoardID != 9 || env.SenderID != 101 {
			t.Errorf("heartbeat = %+v", env)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no heartbeat sent")
	}
}

func TestMarkHeartbeatSeen(t *testing.T) {
	mock := newMockBoardServer(t)
	m, _ := newTestManager(t, mock, nil)

	later := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.MarkHeartbeatSeen(later)
	m.MarkHeartbeatSeen(later.Add(-time.Minute))
	if got := m.LastHeartbeat(); !got.Equal(later) {
		t.Errorf("LastHeartbeat = %v, want %v", got, later)
	}
}

// logBuffer is a bytes.Buffer safe for the heartbeat goroutine to write to.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(substr string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), substr)
}

func TestStaleHeartbeatWarnsWithoutDisconnecting(t *testing.T) {
	logs := &logBuffer{}
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(logs))
	t.Cleanup(func() { logging.SetLogger(prev) })

	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.HeartbeatInterval = 10 * time.Millisecond
		c.HeartbeatTimeout = 150 * time.Millisecond
		c.SenderID = func() int64 { return 101 }
	})

	m.Connect(4, "tok")
	events.waitFor(t, EventOpen)
	mock.accept(t)

	const stale = "heartbeat echo is stale"
	deadline := time.Now().Add(3 * time.Second)
	for logs.count(stale) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no stale heartbeat warning logged")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Further ticks inside the timeout window are throttled.
	events.none(t, EventClose, 60*time.Millisecond)
	if n := logs.count(stale); n != 1 {
		t.Errorf("stale warnings = %d, want 1", n)
	}
	if !m.IsOpen() {
		t.Error("stale heartbeat closed the socket")
	}
	if n := mock.dials.Load(); n != 1 {
		t.Errorf("dials = %d, want 1", n)
	}
}

func TestURLErrorSchedulesReconnect(t *testing.T) {
	mock := newMockBoardServer(t)
	m, events := newTestManager(t, mock, func(c *Config) {
		c.URL = func(int64, string) (string, error) { return "", errors.New("no host") }
		c.Policy = testPolicy(1)
	})

	m.Connect(3, "tok")
	events.waitFor(t, EventError)
	events.waitFor(t, EventReconnectScheduled)
	events.waitFor(t, EventReconnectExhausted)
	if n := mock.dials.Load(); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
}
