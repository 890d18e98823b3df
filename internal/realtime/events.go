// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package realtime

import "sync"

// eventQueue delivers lifecycle events in the order they were pushed, on a
// single goroutine, without ever blocking the pusher.
type eventQueue struct {
	mu    sync.Mutex
	items []Event
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain(deliver func(Event)) {
	for {
		q.mu.Lock()
		batch := q.items
		q.items = nil
		q.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			deliver(e)
		}
	}
}

func (q *eventQueue) run(deliver func(Event)) {
	for {
		select {
		case <-q.wake:
			q.drain(deliver)
		case <-q.done:
			q.drain(deliver)
			return
		}
	}
}

func (q *eventQueue) stop() {
	q.once.Do(func() { close(q.done) })
}
