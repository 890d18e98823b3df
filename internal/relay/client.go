// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package relay

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
	sendBuffer     = 256
)

// Rejection reasons, used as the metrics label.
const (
	rejectRateLimited    = "rate_limited"
	rejectMalformed      = "malformed"
	rejectUnknownKind    = "unknown_kind"
	rejectBoardMismatch  = "board_mismatch"
	rejectSenderMismatch = "sender_mismatch"
)

var (
	errBoardMismatch  = errors.New("envelope board does not match socket board")
	errSenderMismatch = errors.New("envelope sender does not match token user")
	errUnknownKind    = errors.New("unknown action type")
)

// clientIDCounter gives clients a monotonically increasing id so room
// fan-out happens in connection order.
var clientIDCounter atomic.Uint64

// Client is one board socket, bound to a board and an authenticated user.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	boardID int64
	userID  int64
	send    chan []byte
	limiter *rate.Limiter
}

// NewClient creates a client for conn. A nil limiter disables inbound
// rate limiting.
func NewClient(hub *Hub, conn *websocket.Conn, boardID, userID int64, limiter *rate.Limiter) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		boardID: boardID,
		userID:  userID,
		send:    make(chan []byte, sendBuffer),
		limiter: limiter,
	}
}

// ID returns the client's connection-order id.
func (c *Client) ID() uint64 {
	return c.id
}

// BoardID returns the board this client is subscribed to.
func (c *Client) BoardID() int64 {
	return c.boardID
}

// readPump pumps frames from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Int64("board_id", c.boardID).Msg("unexpected websocket close error")
			}
			return
		}
		// Any inbound frame proves liveness.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleFrame(data)
	}
}

// handleFrame checks one inbound frame and routes it. Heartbeats go back to
// the sender only; every other frame goes to the whole room.
func (c *Client) handleFrame(data []byte) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.reject(rejectRateLimited, nil)
		return
	}

	env, err := wire.ParseEnvelope(data)
	if err != nil {
		c.reject(rejectMalformed, err)
		return
	}
	if !env.ActionType.Known() {
		c.reject(rejectUnknownKind, errUnknownKind)
		return
	}
	if env.BoardID != c.boardID {
		c.reject(rejectBoardMismatch, errBoardMismatch)
		return
	}
	if env.SenderID != c.userID {
		c.reject(rejectSenderMismatch, errSenderMismatch)
		return
	}

	if env.IsHeartbeat() {
		c.hub.reply(c, data)
		return
	}
	c.hub.Publish(c.boardID, data)
}

func (c *Client) reject(reason string, err error) {
	metrics.RecordRelayRejected(reason)
	ev := logging.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Int64("board_id", c.boardID).
		Int64("user_id", c.userID).
		Str("reason", reason).
		Msg("relay frame rejected")
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug().Err(err).Int64("board_id", c.boardID).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start registers the client and begins reading and writing. It returns
// false, after closing the connection, if the hub has already stopped.
func (c *Client) Start() bool {
	if !c.hub.join(c) {
		_ = c.conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}
