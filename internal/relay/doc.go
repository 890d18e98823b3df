// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package relay is a development broadcast server for board sockets.

A client connects to GET /ws/board/{boardID}/?token=<session token>. The
token is verified before the upgrade and its user id becomes the only
sender_id the socket may use. Every board_updated envelope a client sends
is rebroadcast to all sockets on the same board, the sender included,
which is why clients suppress their own echoes. Heartbeat envelopes are
echoed to the sender only.

# Components

  - Hub: board rooms and fan-out, run under a supervisor via Serve
  - Client: read and write pumps for one socket, inbound rate limiting
  - Server: chi router with CORS, per-IP upgrade limits, /healthz, /metrics
  - NATSBridge: optional fan-out across relay instances on <prefix>.<boardID>,
    skipping frames that carry this instance's origin id
  - EmbeddedNATS: in-process NATS server for single-host setups and tests

# Usage

	hub := relay.NewHub()
	srv := relay.NewServer(relay.ServerConfig{CORSOrigins: []string{"*"}}, hub, jwtManager)
	go hub.RunWithContext(ctx)
	http.ListenAndServe(":8090", srv.Router())
*/
package relay
