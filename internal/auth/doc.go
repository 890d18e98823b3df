// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package auth handles the board session token.

The client side resolves the token from configuration (TokenSource) and
reads the signed in user's id from its claims without verifying the
signature (ParseUnverified); the server that issued it is the one that
verifies it. The relay side verifies tokens with an HMAC secret
(JWTManager.ValidateToken) before upgrading a socket.

Claims carry the numeric user id used as sender_id on the wire:

	{"user_id": 101, "username": "ada", "exp": ..., "iat": ..., "nbf": ...}
*/
package auth
