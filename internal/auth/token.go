// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrNoToken is returned when neither a token nor a token file is set.
var ErrNoToken = errors.New("no auth token configured")

// TokenSource resolves the current token. A token file wins over a static
// token and is re-read whenever its modification time changes, so a rotated
// token is picked up on the next reconnect.
type TokenSource struct {
	static string
	path   string

	mu      sync.Mutex
	cached  string
	modTime time.Time
}

// NewTokenSource returns a source for a static token, a token file, or both.
func NewTokenSource(token, path string) *TokenSource {
	return &TokenSource{static: strings.TrimSpace(token), path: path}
}

// Token returns the current token.
func (s *TokenSource) Token() (string, error) {
	if s.path == "" {
		if s.static == "" {
			return "", ErrNoToken
		}
		return s.static, nil
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("stat token file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != "" && info.ModTime().Equal(s.modTime) {
		return s.cached, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", fmt.Errorf("token file %s is empty", s.path)
	}
	s.cached = tok
	s.modTime = info.ModTime()
	return tok, nil
}

// UserID returns the user id carried by the current token, or 0 when the
// token cannot be read.
func (s *TokenSource) UserID() int64 {
	tok, err := s.Token()
	if err != nil {
		return 0
	}
	claims, err := ParseUnverified(tok)
	if err != nil {
		return 0
	}
	return claims.UserID
}
