// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package services provides suture.Service wrappers for Boardsync components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve pattern:

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - BoardSessionService: opens a board, keeps it open, closes it on stop
  - ShutdownService: holds a self-running component (the connection
    manager) and stops it when the tree stops

The relay hub and NATS bridge implement Serve themselves and are added to
the tree directly.
*/
package services
