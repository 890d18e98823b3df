// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package logging provides the process-wide zerolog logger for Boardsync.
//
// Every package logs through this one logger so that the realtime connection,
// the merge engine and the relay all emit the same JSON shape:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int64("board_id", id).Msg("board loaded")
//	logging.Warn().Err(err).Str("action_type", kind).Msg("payload rejected")
//
// Components create child loggers with a component field:
//
//	log := logging.WithComponent("realtime")
//	log.Debug().Int("attempt", n).Msg("reconnect scheduled")
//
// Context-scoped fields (correlation id, board id) are attached with the
// Context* helpers and read back by Ctx:
//
//	ctx = logging.ContextWithBoardID(ctx, boardID)
//	logging.Ctx(ctx).Info().Msg("optimistic mutation applied")
//
// # Configuration
//
// Environment variables (through internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// The slog adapter (NewSlogLogger) exists for libraries that only accept a
// *slog.Logger, notably sutureslog in internal/supervisor.
package logging
