// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package services

import (
	"context"
	"fmt"
	"time"
)

// Shutdowner is a component that runs on its own goroutines and needs an
// orderly stop. Satisfied by *realtime.Manager.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownService holds a self-running component in the tree so that it
// is stopped, within timeout, when the tree stops.
type ShutdownService struct {
	component Shutdowner
	timeout   time.Duration
	name      string
}

// NewShutdownService creates a wrapper for component.
func NewShutdownService(name string, component Shutdowner, timeout time.Duration) *ShutdownService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ShutdownService{component: component, timeout: timeout, name: name}
}

// Serve implements suture.Service.
func (s *ShutdownService) Serve(ctx context.Context) error {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.component.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *ShutdownService) String() string {
	return s.name
}
