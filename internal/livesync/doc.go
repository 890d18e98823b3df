// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package livesync connects the board tree to the realtime socket.

A Store owns the board tree of the open board and is the only writer to it.
Every change enters through Store.Dispatch, which runs one Action at a time:

  - BeginLoadBoard resolves the auth token and connects the socket.
  - BoardLoaded installs a freshly fetched tree.
  - MutationOptimistic applies a local change before its request is sent.
  - MutationFulfilled merges the confirmed result and broadcasts it to peers.
  - MutationRejected records a failed request; the Runner then refetches.
  - InboundMessage parses a socket frame, drops echoes of our own
    broadcasts and reconciles everything else into the tree.
  - BoardClosed and Logout close the socket and discard the tree.

Runner drives a single local mutation through
Idle, OptimisticApplied, RequestPending and then Confirmed or Failed.
Failure is handled by refetching the board rather than by undoing the
optimistic change.

Nothing in this package panics on bad input: malformed or invalid frames are
logged at Warn, counted in metrics and dropped.
*/
package livesync
