// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import "time"

// EventKind names a connection lifecycle event.
type EventKind string

const (
	EventConnectStart       EventKind = "connect-start"
	EventOpen               EventKind = "open"
	EventError              EventKind = "error"
	EventClose              EventKind = "close"
	EventReconnectScheduled EventKind = "reconnect-scheduled"
	EventReconnectAttempt   EventKind = "reconnect-attempt"
	EventReconnectExhausted EventKind = "reconnect-exhausted"
	EventManualClose        EventKind = "manual-close"
)

// Event describes one lifecycle transition. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind    EventKind
	BoardID int64
	At      time.Time

	// Attempt is the reconnect attempt number for reconnect-* events.
	Attempt int
	// Delay is the scheduled wait for reconnect-scheduled.
	Delay time.Duration

	// Close details.
	Code   int
	Reason string
	Clean  bool
	Manual bool

	Err error
}
