// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// URLBuilder returns the socket URL for a board.
type URLBuilder func(boardID int64, token string) (string, error)

// BoardURL returns a URLBuilder for wss://host/ws/board/<id>/?token=<token>.
// secure=false selects ws:// for local relays.
func BoardURL(host string, secure bool) URLBuilder {
	scheme := "wss"
	if !secure {
		scheme = "ws"
	}
	return func(boardID int64, token string) (string, error) {
		if host == "" {
			return "", errors.New("realtime host is not configured")
		}
		if boardID <= 0 {
			return "", fmt.Errorf("invalid board id %d", boardID)
		}
		u := url.URL{
			Scheme: scheme,
			Host:   host,
			Path:   "/ws/board/" + strconv.FormatInt(boardID, 10) + "/",
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
}
