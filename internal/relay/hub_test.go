// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBridge records published frames.
type fakeBridge struct {
	mu     sync.Mutex
	frames map[int64][][]byte
	err    error
}

func (b *fakeBridge) Publish(boardID int64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frames == nil {
		b.frames = make(map[int64][][]byte)
	}
	b.frames[boardID] = append(b.frames[boardID], data)
	return b.err
}

func (b *fakeBridge) count(boardID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames[boardID])
}

// runHub starts hub and returns a stop func that waits for it to exit.
func runHub(t *testing.T, hub *Hub) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancelCtx()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("RunWithContext returned %v, want context.Canceled", err)
			}
		})
	}
	t.Cleanup(stop)
	return stop
}

// connlessClient is a hub member without a socket, for exercising fan-out.
func connlessClient(hub *Hub, boardID int64, buffer int) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		boardID: boardID,
		send:    make(chan []byte, buffer),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return data
	case <-time.After(time.Second):
		t.Fatal("no frame within 1s")
		return nil
	}
}

func TestHub_RoomsIsolateBoards(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)

	a1 := connlessClient(hub, 1, 4)
	a2 := connlessClient(hub, 1, 4)
	b1 := connlessClient(hub, 2, 4)
	for _, c := range []*Client{a1, a2, b1} {
		if !hub.join(c) {
			t.Fatal("join failed on running hub")
		}
	}
	waitUntil(t, func() bool { return hub.ClientCount() == 3 })
	if hub.RoomCount() != 2 || hub.RoomSize(1) != 2 {
		t.Fatalf("%d rooms, room1=%d", hub.RoomCount(), hub.RoomSize(1))
	}

	hub.Publish(1, []byte("frame"))
	if string(receive(t, a1)) != "frame" || string(receive(t, a2)) != "frame" {
		t.Fatal("room 1 members should both receive the frame")
	}
	select {
	case data := <-b1.send:
		t.Fatalf("room 2 received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_ReplyTargetsOneClient(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)

	a1 := connlessClient(hub, 1, 4)
	a2 := connlessClient(hub, 1, 4)
	hub.join(a1)
	hub.join(a2)

	hub.reply(a1, []byte("pong"))
	if string(receive(t, a1)) != "pong" {
		t.Fatal("target should receive the reply")
	}
	select {
	case data := <-a2.send:
		t.Fatalf("non-target received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterRemovesEmptyRoom(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)

	c := connlessClient(hub, 9, 1)
	hub.join(c)
	hub.leave(c)

	if _, ok := <-c.send; ok {
		t.Fatal("send channel should be closed after unregister")
	}
	if hub.RoomCount() != 0 {
		t.Errorf("RoomCount = %d, want 0", hub.RoomCount())
	}
	// A second unregister is harmless.
	hub.leave(c)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)

	slow := connlessClient(hub, 1, 1)
	fast := connlessClient(hub, 1, 8)
	hub.join(slow)
	hub.join(fast)

	hub.Publish(1, []byte("one"))
	hub.Publish(1, []byte("two"))

	receive(t, fast)
	receive(t, fast)
	if hub.RoomSize(1) != 1 {
		t.Errorf("RoomSize = %d, want slow client dropped", hub.RoomSize(1))
	}
}

func TestHub_PublishUsesBridgeDeliverDoesNot(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)
	bridge := &fakeBridge{}
	hub.SetBridge(bridge)

	c := connlessClient(hub, 3, 4)
	hub.join(c)

	hub.Publish(3, []byte("local"))
	hub.Deliver(3, []byte("remote"))
	receive(t, c)
	receive(t, c)

	if bridge.count(3) != 1 {
		t.Errorf("bridge published %d frames, want 1", bridge.count(3))
	}

	hub.SetBridge(nil)
	hub.Publish(3, []byte("after"))
	receive(t, c)
	if bridge.count(3) != 1 {
		t.Error("cleared bridge should not receive frames")
	}
}

func TestHub_ShutdownClosesClientsAndReleasesJoin(t *testing.T) {
	hub := NewHub()
	stop := runHub(t, hub)

	c := connlessClient(hub, 1, 1)
	hub.join(c)
	stop()

	if _, ok := <-c.send; ok {
		t.Fatal("client should be closed on shutdown")
	}
	if hub.join(connlessClient(hub, 1, 1)) {
		t.Error("join after shutdown should fail")
	}
	hub.leave(c)
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %s", got)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %s", got)
	}
}
