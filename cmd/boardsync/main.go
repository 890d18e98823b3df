// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

// Package main is the Boardsync client: it opens one board, keeps its tree
// in sync with every other editor through the realtime relay, and exposes a
// local control API for the UI shell that renders it.
//
// # Startup
//
//  1. Configuration: koanf layers (defaults, config.yaml, environment)
//  2. Logging: zerolog, level and format from config
//  3. Token: static BOARDSYNC_TOKEN or a rotating BOARDSYNC_TOKEN_FILE
//  4. Connection manager, store, runner, board API client, authorizer
//  5. Drag engine wired to the runner through livesync.MoveHandler, card
//     edits through livesync.Mutations
//  6. Supervisor tree: board session, connection manager, control server
//
// # Control API
//
// Served on admin.addr (default 127.0.0.1:9464):
//
//	GET    /healthz                              connection and board status
//	GET    /metrics                              Prometheus metrics
//	GET    /board                                snapshot of the open board tree
//	GET    /drag                                 active flag and remount generation
//	POST   /drag/start                           drag.Start
//	POST   /drag/update                          drag.Update
//	POST   /drag/pointer                         pointer and view bounds, answers {dx, dy}
//	POST   /drag/pointer-up                      arms lost-end recovery
//	POST   /drag/end                             drag.DropResult
//	POST   /cards                                create a card
//	PATCH  /cards/{cardID}                       update card fields
//	DELETE /cards/{cardID}                       delete a card
//	POST   /cards/{cardID}/comments              add a comment
//	POST   /checklists/{checklistID}/items       add a checklist item
//	DELETE /checklists/{checklistID}/items/{id}  delete a checklist item
//
// The shell applies the {dx, dy} answered by /drag/pointer to the board
// view and rebuilds its drag context whenever the remount generation from
// GET /drag changes.
//
// # Example
//
//	export BOARDSYNC_REALTIME_HOST=boards.example.com
//	export BOARDSYNC_API_URL=https://boards.example.com/api
//	export BOARDSYNC_TOKEN_FILE=/run/secrets/boardsync-token
//	export BOARDSYNC_BOARD_ID=42
//	./boardsync
//
// SIGINT or SIGTERM closes the board, which closes the socket, and stops
// the tree.
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

	"github.com/tomtom215/boardsync/internal/auth"
	"github.com/tomtom215/boardsync/internal/authz"
	"github.com/tomtom215/boardsync/internal/boardapi"
	"github.com/tomtom215/boardsync/internal/config"
	"github.com/tomtom215/boardsync/internal/drag"
	"github.com/tomtom215/boardsync/internal/livesync"
	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/realtime"
	"github.com/tomtom215/boardsync/internal/supervisor"
	"github.com/tomtom215/boardsync/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

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

	if err := cfg.ValidateClient(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid client configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Boardsync stopped with error")
	}
	logging.Info().Msg("Boardsync stopped")
}

// managerConfig maps the realtime config section onto the connection
// manager. A zero heartbeat interval in config disables heartbeats.
func managerConfig(rc config.RealtimeConfig) realtime.Config {
	interval := rc.HeartbeatInterval
	if interval == 0 {
		interval = -1
	}
	return realtime.Config{
		URL: realtime.BoardURL(rc.Host, rc.Secure),
		Policy: realtime.Policy{
			Base:        rc.ReconnectBase,
			Cap:         rc.ReconnectCap,
			Jitter:      rc.ReconnectJitter,
			MaxAttempts: rc.ReconnectMaxAttempts,
		},
		HeartbeatInterval: interval,
		HeartbeatTimeout:  rc.HeartbeatTimeout,
		DialTimeout:       rc.DialTimeout,
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	tokens := auth.NewTokenSource(cfg.Auth.Token, cfg.Auth.TokenFile)

	var store *livesync.Store
	mcfg := managerConfig(cfg.Realtime)
	mcfg.TokenSource = tokens.Token
	mcfg.SenderID = tokens.UserID
	mcfg.OnMessage = func(data []byte) { store.HandleMessage(data) }
	conn, err := realtime.New(mcfg)
	if err != nil {
		return fmt.Errorf("create connection manager: %w", err)
	}

	store = livesync.NewStore(livesync.StoreConfig{
		Conn:   conn,
		Token:  tokens.Token,
		UserID: tokens.UserID,
	})

	boards, err := boardapi.New(boardapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Token:   tokens.Token,
	})
	if err != nil {
		return fmt.Errorf("create board API client: %w", err)
	}

	enforcer, err := authz.NewEnforcer(authz.Config{})
	if err != nil {
		return fmt.Errorf("create authorizer: %w", err)
	}
	defer enforcer.Close()

	runner := livesync.NewRunner(store, enforcer, boards)
	viewport := &shellViewport{}
	remounts := &remountSignal{}
	engine := drag.NewEngine(livesync.NewMoveHandler(runner, boards), drag.Options{
		Remount:  remounts.bump,
		Viewport: viewport,
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	control := &http.Server{
		Addr: cfg.Admin.Addr,
		Handler: newControlRouter(controlDeps{
			ctx:      ctx,
			conn:     conn,
			board:    store,
			engine:   engine,
			viewport: viewport,
			remounts: remounts,
			cards:    livesync.NewMutations(runner, boards),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	tree.AddRealtimeService(services.NewShutdownService("realtime-manager", conn, shutdownTimeout))
	tree.AddRealtimeService(services.NewBoardSessionService(runner, store, cfg.Board.ID))
	tree.AddAPIService(services.NewHTTPServerService("control-http", control, shutdownTimeout))

	logging.Info().
		Int64("board_id", cfg.Board.ID).
		Str("realtime_host", cfg.Realtime.Host).
		Str("api", cfg.API.BaseURL).
		Str("control_addr", cfg.Admin.Addr).
		Msg("Starting Boardsync")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
