// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package relay

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (e.g. SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Broadcast sources, used as the metrics label.
const (
	sourceLocal  = "local"
	sourceRemote = "nats"
)

// Bridge carries locally published frames to other relay instances.
type Bridge interface {
	Publish(boardID int64, data []byte) error
}

// delivery is one frame bound for a board room. When target is set only
// that client receives it.
type delivery struct {
	boardID int64
	data    []byte
	source  string
	target  *Client
}

// Hub maintains the board rooms and fans frames out to their clients.
// Every frame is delivered to all clients of the room, the sender included.
type Hub struct {
	rooms      map[int64]map[*Client]struct{}
	broadcast  chan delivery
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	bridge atomic.Pointer[bridgeRef]

	// done is closed once the hub has stopped, releasing clients that
	// would otherwise block on Register or Unregister.
	done     chan struct{}
	doneOnce sync.Once
}

type bridgeRef struct{ Bridge }

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		broadcast:  make(chan delivery, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetBridge installs the cross-instance bridge. A nil bridge disables it.
func (h *Hub) SetBridge(b Bridge) {
	if b == nil {
		h.bridge.Store(nil)
		return
	}
	h.bridge.Store(&bridgeRef{b})
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err(). Lifecycle events are handled before
// broadcasts so room membership is current when a frame fans out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle
		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		// Priority 3: broadcasts, or wait for anything
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case d := <-h.broadcast:
			h.broadcastToRoom(d)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.boardID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.boardID] = room
	}
	room[client] = struct{}{}
	h.mu.Unlock()

	h.updateGauges()
	logging.Info().
		Int64("board_id", client.boardID).
		Int64("user_id", client.userID).
		Int("room_clients", h.RoomSize(client.boardID)).
		Msg("relay client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	h.mu.Unlock()

	if !removed {
		return
	}
	h.updateGauges()
	logging.Info().
		Int64("board_id", client.boardID).
		Int64("user_id", client.userID).
		Msg("relay client disconnected")
}

// removeLocked drops client from its room and closes its send channel.
// Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) bool {
	room, ok := h.rooms[client.boardID]
	if !ok {
		return false
	}
	if _, ok := room[client]; !ok {
		return false
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.boardID)
	}
	return true
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()
	h.doneOnce.Do(func() { close(h.done) })

	logging.Info().
		Str("component", "relay-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("relay hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns room members ordered by id for deterministic fan-out.
func sortedClients(room map[*Client]struct{}) []*Client {
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToRoom sends d to every client of its room. Clients whose send
// buffer is full are dropped.
func (h *Hub) broadcastToRoom(d delivery) {
	h.mu.Lock()
	room := h.rooms[d.boardID]
	recipients := sortedClients(room)
	if d.target != nil {
		recipients = nil
		if _, ok := room[d.target]; ok {
			recipients = []*Client{d.target}
		}
	}
	var dropped int
	for _, client := range recipients {
		select {
		case client.send <- d.data:
		default:
			h.removeLocked(client)
			dropped++
		}
	}
	h.mu.Unlock()

	if d.target == nil {
		metrics.RecordRelayBroadcast(d.source)
	}
	if dropped > 0 {
		h.updateGauges()
		logging.Warn().
			Int64("board_id", d.boardID).
			Int("dropped", dropped).
			Msg("dropped slow relay clients")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	for boardID, room := range h.rooms {
		for _, client := range sortedClients(room) {
			close(client.send)
		}
		delete(h.rooms, boardID)
	}
	h.mu.Unlock()
	h.updateGauges()
}

// join registers client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client unless the hub has stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Publish fans a frame received from a local client out to its room and,
// when a bridge is installed, to the other relay instances.
func (h *Hub) Publish(boardID int64, data []byte) {
	h.enqueue(delivery{boardID: boardID, data: data, source: sourceLocal})

	ref := h.bridge.Load()
	if ref == nil {
		return
	}
	if err := ref.Publish(boardID, data); err != nil {
		logging.Warn().Err(err).Int64("board_id", boardID).Msg("bridge publish failed")
	}
}

// reply queues a frame for client alone.
func (h *Hub) reply(client *Client, data []byte) {
	h.enqueue(delivery{boardID: client.boardID, data: data, source: sourceLocal, target: client})
}

// Deliver fans a frame received from another relay instance out to the
// local room only.
func (h *Hub) Deliver(boardID int64, data []byte) {
	h.enqueue(delivery{boardID: boardID, data: data, source: sourceRemote})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		metrics.RecordRelayRejected("hub_full")
		logging.Warn().Int64("board_id", d.boardID).Msg("broadcast channel full, dropping frame")
	}
}

// ClientCount returns the number of connected clients across all rooms.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// RoomSize returns the number of clients connected to boardID.
func (h *Hub) RoomSize(boardID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

// RoomCount returns the number of boards with at least one client.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) updateGauges() {
	metrics.RelayClients.Set(float64(h.ClientCount()))
	metrics.RelayRooms.Set(float64(h.RoomCount()))
}
