// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package supervisor provides process supervision for Boardsync using suture v4.

Both binaries run their long-lived components under a three-layer tree:

	RootSupervisor ("boardsync" or "relay")
	├── realtime-layer
	│   ├── realtime-manager (ShutdownService around the connection manager)
	│   └── board-session-<id>
	├── messaging-layer
	│   ├── relay hub
	│   └── NATS bridge (when configured)
	└── api-layer
	    ├── admin-http
	    └── relay-http

A crash in one layer is restarted with backoff without touching the
others. A service that returns an error wrapping
suture.ErrTerminateSupervisorTree stops the whole tree; the board session
does this when the board does not exist.

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService("relay-http", srv, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}

Service events are logged through sutureslog into the zerolog backend.

See also internal/supervisor/services for the service wrappers.
*/
package supervisor
