// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package relay

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
)

// OriginHeader carries the publishing relay's instance id so a relay can
// skip its own frames when they come back from NATS.
const OriginHeader = "Boardsync-Origin"

// NATSBridge fans board frames out across relay instances. Frames for
// board N are published on <prefix>.N.
type NATSBridge struct {
	nc         *nats.Conn
	prefix     string
	instanceID string
	hub        *Hub

	mu      sync.Mutex
	sub     *nats.Subscription
	running bool
}

// NewNATSBridge creates a bridge over nc delivering remote frames to hub.
func NewNATSBridge(nc *nats.Conn, prefix string, hub *Hub) *NATSBridge {
	return &NATSBridge{
		nc:         nc,
		prefix:     strings.TrimSuffix(prefix, "."),
		instanceID: uuid.New().String(),
		hub:        hub,
	}
}

// InstanceID returns this relay's origin id.
func (b *NATSBridge) InstanceID() string {
	return b.instanceID
}

// Subject returns the subject frames for boardID are published on.
func (b *NATSBridge) Subject(boardID int64) string {
	return b.prefix + "." + strconv.FormatInt(boardID, 10)
}

// Publish implements Bridge.
func (b *NATSBridge) Publish(boardID int64, data []byte) error {
	msg := nats.NewMsg(b.Subject(boardID))
	msg.Header.Set(OriginHeader, b.instanceID)
	msg.Data = data
	if err := b.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Start subscribes to every board subject. Calling Start twice is a no-op.
func (b *NATSBridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	sub, err := b.nc.Subscribe(b.prefix+".*", b.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe %s.*: %w", b.prefix, err)
	}
	if err := b.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flush subscription: %w", err)
	}
	b.sub = sub
	b.running = true

	logging.Info().
		Str("subject", b.prefix+".*").
		Str("instance_id", b.instanceID).
		Msg("NATS relay bridge started")
	return nil
}

// Stop unsubscribes. The connection itself stays open.
func (b *NATSBridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	if err := b.sub.Unsubscribe(); err != nil {
		logging.Warn().Err(err).Msg("NATS relay bridge unsubscribe failed")
	}
	b.sub = nil
	b.running = false
	logging.Info().Msg("NATS relay bridge stopped")
}

// Serve implements suture.Service: it subscribes and blocks until ctx is
// canceled.
func (b *NATSBridge) Serve(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()
	<-ctx.Done()
	return ctx.Err()
}

func (b *NATSBridge) handleMessage(msg *nats.Msg) {
	if msg.Header.Get(OriginHeader) == b.instanceID {
		return
	}
	boardID, err := strconv.ParseInt(strings.TrimPrefix(msg.Subject, b.prefix+"."), 10, 64)
	if err != nil || boardID <= 0 {
		metrics.RecordRelayRejected("bad_subject")
		logging.Warn().Str("subject", msg.Subject).Msg("NATS frame on unexpected subject")
		return
	}
	b.hub.Deliver(boardID, msg.Data)
}
