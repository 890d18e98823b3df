// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package authz

import "sync"

// decisionCache remembers enforcement results. The key space is bounded by
// roles x objects x actions, so entries never expire; a policy reload clears
// it.
type decisionCache struct {
	mu    sync.RWMutex
	items map[string]bool
}

func newDecisionCache() *decisionCache {
	return &decisionCache{items: make(map[string]bool)}
}

func (c *decisionCache) key(role, obj, act string) string {
	return role + ":" + obj + ":" + act
}

func (c *decisionCache) get(role, obj, act string) (allowed, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	allowed, ok = c.items[c.key(role, obj, act)]
	return allowed, ok
}

func (c *decisionCache) set(role, obj, act string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[c.key(role, obj, act)] = allowed
}

func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]bool)
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
