// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package relay

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/tomtom215/boardsync/internal/auth"
	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/metrics"
	"github.com/tomtom215/boardsync/internal/middleware"
)

// TokenVerifier validates the session token presented on upgrade.
type TokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// ServerConfig holds the HTTP-facing relay settings.
type ServerConfig struct {
	// CORSOrigins is shared by the CORS middleware and the websocket
	// origin check. "*" allows any origin.
	CORSOrigins []string

	// RateLimitReqs upgrade requests per RateLimitWindow per IP. Zero disables.
	RateLimitReqs   int
	RateLimitWindow time.Duration

	// ClientMessagesPerSecond and ClientBurst bound inbound frames per
	// socket. Zero disables.
	ClientMessagesPerSecond float64
	ClientBurst             int
}

// Server is the relay's HTTP front: websocket upgrades plus health and
// metrics endpoints.
type Server struct {
	cfg      ServerConfig
	hub      *Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
}

// NewServer returns a server feeding hub.
func NewServer(cfg ServerConfig, hub *Hub, verifier TokenVerifier) *Server {
	s := &Server{cfg: cfg, hub: hub, verifier: verifier}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics("relay"))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimitReqs, s.cfg.RateLimitWindow))
		}
		r.Get("/ws/board/{boardID}", s.serveBoard)
		r.Get("/ws/board/{boardID}/", s.serveBoard)
	})

	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Rooms   int    `json:"rooms"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Clients: s.hub.ClientCount(),
		Rooms:   s.hub.RoomCount(),
	})
}

// serveBoard authenticates the token query parameter and upgrades the
// request into a board socket.
func (s *Server) serveBoard(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil || boardID <= 0 {
		metrics.RecordRelayRejected("bad_board")
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	claims, err := s.verifier.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		metrics.RecordRelayRejected("unauthorized")
		logging.Debug().Err(err).Int64("board_id", boardID).Msg("relay upgrade rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Int64("board_id", boardID).Msg("websocket upgrade error")
		return
	}

	NewClient(s.hub, conn, boardID, claims.UserID, s.newLimiter()).Start()
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.cfg.ClientMessagesPerSecond <= 0 {
		return nil
	}
	burst := s.cfg.ClientBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.cfg.ClientMessagesPerSecond), burst)
}

// checkOrigin allows requests without an Origin header, which non-browser
// clients omit, and otherwise requires a configured origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips control characters and truncates untrusted input.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
		if len(out) >= maxLen {
			break
		}
	}
	return string(out)
}
