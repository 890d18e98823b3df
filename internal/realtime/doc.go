// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package realtime keeps one websocket open to the board relay.

A Manager is built once per process and pointed at a board with Connect. It
owns the socket, the reconnect scheduler and the heartbeat ticker; callers
only see Connect, Send, Close and IsOpen plus two callbacks: one for inbound
frames and one for lifecycle events.

# Reconnection

Any close that was not requested through Close schedules a reconnect after

	min(Base*attempt, Cap) + uniform[0, Jitter]

The attempt counter resets when a socket opens. Once it reaches MaxAttempts
the manager emits reconnect-exhausted and stops trying until Connect is
called again.

# Heartbeat

While open the manager sends a heartbeat envelope every HeartbeatInterval.
The relay echoes heartbeats back to their sender; the sync layer reports
those echoes through MarkHeartbeatSeen. If none has been seen for
HeartbeatTimeout a warning is logged. The socket is not closed.

# Lifecycle Events

connect-start, open, error, close (code, reason, clean, manual),
reconnect-scheduled, reconnect-attempt, reconnect-exhausted and
manual-close are reported to Config.OnLifecycle, logged and counted. They
are for observability only.

# Thread Safety

All Manager methods are safe for concurrent use. Callbacks run on the
manager's own goroutines and must not block for long.
*/
package realtime
