// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import (
	"math/rand/v2"
	"time"
)

// Policy is the linear-capped reconnect backoff.
type Policy struct {
	Base        time.Duration
	Cap         time.Duration
	Jitter      time.Duration
	MaxAttempts int
}

// DefaultPolicy returns the backoff used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Base:        time.Second,
		Cap:         30 * time.Second,
		Jitter:      time.Second,
		MaxAttempts: 10,
	}
}

// Delay returns the wait before reconnect attempt number attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	return p.delay(attempt, rand.Int64N)
}

func (p Policy) delay(attempt int, int64n func(int64) int64) time.Duration {
	attempt = max(attempt, 1)
	d := min(p.Base*time.Duration(attempt), p.Cap)
	if p.Jitter > 0 {
		d += time.Duration(int64n(int64(p.Jitter) + 1))
	}
	return d
}

// Exhausted reports whether no attempt may follow attempt.
func (p Policy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
