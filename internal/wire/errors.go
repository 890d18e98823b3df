// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import "errors"

var (
	// ErrMalformedEnvelope is returned for frames that are not JSON or lack
	// the board_updated envelope fields.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrUnknownAction is returned for action kinds outside the closed set.
	ErrUnknownAction = errors.New("unknown action kind")

	// ErrInvalidPayload is returned when a payload does not have the shape
	// its action kind requires.
	ErrInvalidPayload = errors.New("invalid payload")
)
