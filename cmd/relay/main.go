// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package main is the Boardsync relay: a board-scoped broadcast server.
//
// Every client of a board connects to GET /ws/board/{boardID}/?token=<jwt>.
// Each board_updated envelope a client sends is rebroadcast to every socket
// on that board, the sender included. Heartbeats are answered to the sender
// only.
//
// Several relay instances can share boards through NATS: set RELAY_NATS_URL
// to an existing server, or RELAY_NATS_EMBEDDED=true to run one in-process
// on 127.0.0.1:4222.
//
// # Example
//
//	export RELAY_JWT_SECRET=$(openssl rand -base64 32)
//	export RELAY_ADDR=:8090
//	export RELAY_CORS_ORIGINS=https://boards.example.com
//	./relay
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/boardsync/internal/auth"
	"github.com/tomtom215/boardsync/internal/config"
	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/relay"
	"github.com/tomtom215/boardsync/internal/supervisor"
	"github.com/tomtom215/boardsync/internal/supervisor/services"
)

const (
	shutdownTimeout   = 10 * time.Second
	embeddedNATSPort  = 4222
	tokenLifetime     = 24 * time.Hour
	natsReconnectWait = time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.ValidateRelay(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid relay configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg.Relay); err != nil {
		logging.Fatal().Err(err).Msg("Relay stopped with error")
	}
	logging.Info().Msg("Relay stopped")
}

func run(ctx context.Context, rc *config.RelayConfig) error {
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	jwtManager, err := auth.NewJWTManager(rc.JWTSecret, tokenLifetime)
	if err != nil {
		return fmt.Errorf("create JWT manager: %w", err)
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.Name = "relay"
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	hub := relay.NewHub()
	tree.AddMessagingService(hub)

	if rc.BridgeEnabled() {
		nc, cleanup, err := connectNATS(rc, tree)
		if err != nil {
			return err
		}
		defer cleanup()

		bridge := relay.NewNATSBridge(nc, rc.NATSSubjectPrefix, hub)
		hub.SetBridge(bridge)
		tree.AddMessagingService(bridge)
		logging.Info().
			Str("nats_url", nc.ConnectedUrlRedacted()).
			Str("subject_prefix", rc.NATSSubjectPrefix).
			Str("instance_id", bridge.InstanceID()).
			Msg("NATS bridge enabled")
	}

	srv := relay.NewServer(relay.ServerConfig{
		CORSOrigins:             rc.CORSOrigins,
		RateLimitReqs:           rc.RateLimitReqs,
		RateLimitWindow:         rc.RateLimitWindow,
		ClientMessagesPerSecond: rc.ClientMessagesPerSecond,
		ClientBurst:             rc.ClientBurst,
	}, hub, jwtManager)

	httpServer := &http.Server{
		Addr:              rc.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService("relay-http", httpServer, shutdownTimeout))

	logging.Info().
		Str("addr", rc.Addr).
		Strs("cors_origins", rc.CORSOrigins).
		Bool("bridge", rc.BridgeEnabled()).
		Msg("Starting relay")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connectNATS connects to the configured server, starting an embedded one
// first when requested. The embedded server is supervised so it is shut
// down with the tree. cleanup drains the connection.
func connectNATS(rc *config.RelayConfig, tree *supervisor.SupervisorTree) (*nats.Conn, func(), error) {
	url := rc.NATSURL
	if rc.NATSEmbedded {
		embedded, err := relay.StartEmbeddedNATS(embeddedNATSPort)
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		tree.AddMessagingService(services.NewShutdownService("embedded-nats", embedded, shutdownTimeout))
		url = embedded.ClientURL()
	}

	nc, err := nats.Connect(url,
		nats.Name("boardsync-relay"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logging.Info().Str("url", c.ConnectedUrlRedacted()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			logging.Warn().Err(err).Msg("NATS drain failed")
		}
	}
	return nc, cleanup, nil
}
