// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package config

import "time"

// Config holds all configuration for the boardsync client and the
// development relay.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// The client binary reads Realtime, API, Auth, Board and Admin. The relay
// binary reads Relay. Both read Logging.
type Config struct {
	Realtime RealtimeConfig `koanf:"realtime"`
	API      APIConfig      `koanf:"api"`
	Auth     AuthConfig     `koanf:"auth"`
	Board    BoardConfig    `koanf:"board"`
	Admin    AdminConfig    `koanf:"admin"`
	Relay    RelayConfig    `koanf:"relay"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// RealtimeConfig holds the realtime connection settings.
//
// Environment Variables:
//   - BOARDSYNC_REALTIME_HOST: relay host[:port] (required by the client)
//   - BOARDSYNC_REALTIME_SECURE: use wss instead of ws (default: false)
//   - BOARDSYNC_HEARTBEAT_INTERVAL: heartbeat send period, 0 disables (default: 30s)
//   - BOARDSYNC_HEARTBEAT_TIMEOUT: staleness threshold for own heartbeat echo (default: 90s)
//   - BOARDSYNC_RECONNECT_BASE: per-attempt linear delay step (default: 1s)
//   - BOARDSYNC_RECONNECT_CAP: maximum base delay (default: 30s)
//   - BOARDSYNC_RECONNECT_JITTER: maximum random extra delay (default: 1s)
//   - BOARDSYNC_RECONNECT_MAX_ATTEMPTS: attempts before giving up (default: 10)
//   - BOARDSYNC_DIAL_TIMEOUT: websocket handshake timeout (default: 10s)
type RealtimeConfig struct {
	Host                 string        `koanf:"host"`
	Secure               bool          `koanf:"secure"`
	HeartbeatInterval    time.Duration `koanf:"heartbeat_interval"`
	HeartbeatTimeout     time.Duration `koanf:"heartbeat_timeout"`
	ReconnectBase        time.Duration `koanf:"reconnect_base"`
	ReconnectCap         time.Duration `koanf:"reconnect_cap"`
	ReconnectJitter      time.Duration `koanf:"reconnect_jitter"`
	ReconnectMaxAttempts int           `koanf:"reconnect_max_attempts"`
	DialTimeout          time.Duration `koanf:"dial_timeout"`
}

// APIConfig holds the board REST API settings.
type APIConfig struct {
	// BaseURL is the API root, for example http://localhost:8000/api.
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// AuthConfig holds the session token source. Token wins over TokenFile
// when both are set.
type AuthConfig struct {
	Token     string `koanf:"token"`
	TokenFile string `koanf:"token_file"`
}

// BoardConfig selects the board the client opens at startup.
type BoardConfig struct {
	ID int64 `koanf:"id"`
}

// AdminConfig holds the client's admin listener (metrics and health).
type AdminConfig struct {
	// Addr is the listen address. Empty disables the listener.
	Addr string `koanf:"addr"`
}

// RelayConfig holds the development relay settings.
//
// Environment Variables:
//   - RELAY_ADDR: listen address (default: :8090)
//   - RELAY_CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RELAY_RATE_LIMIT_REQS / RELAY_RATE_LIMIT_WINDOW: upgrade requests per IP
//   - RELAY_CLIENT_MPS / RELAY_CLIENT_BURST: inbound messages per socket
//   - RELAY_JWT_SECRET: HMAC secret for session tokens (required by the relay)
//   - RELAY_NATS_URL: external NATS server, empty disables the bridge
//   - RELAY_NATS_EMBEDDED: start an in-process NATS server for the bridge
//   - RELAY_NATS_SUBJECT_PREFIX: subject prefix (default: boardsync.board)
type RelayConfig struct {
	Addr                    string        `koanf:"addr"`
	CORSOrigins             []string      `koanf:"cors_origins"`
	RateLimitReqs           int           `koanf:"rate_limit_reqs"`
	RateLimitWindow         time.Duration `koanf:"rate_limit_window"`
	ClientMessagesPerSecond float64       `koanf:"client_messages_per_second"`
	ClientBurst             int           `koanf:"client_burst"`
	JWTSecret               string        `koanf:"jwt_secret"`
	NATSURL                 string        `koanf:"nats_url"`
	NATSEmbedded            bool          `koanf:"nats_embedded"`
	NATSSubjectPrefix       string        `koanf:"nats_subject_prefix"`
}

// BridgeEnabled reports whether the relay should fan out through NATS.
func (r *RelayConfig) BridgeEnabled() bool {
	return r.NATSEmbedded || r.NATSURL != ""
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

