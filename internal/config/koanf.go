// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/boardsync/config.yaml",
	"/etc/boardsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Realtime: RealtimeConfig{
			Host:                 "",
			Secure:               false,
			HeartbeatInterval:    30 * time.Second,
			HeartbeatTimeout:     90 * time.Second,
			ReconnectBase:        time.Second,
			ReconnectCap:         30 * time.Second,
			ReconnectJitter:      time.Second,
			ReconnectMaxAttempts: 10,
			DialTimeout:          10 * time.Second,
		},
		API: APIConfig{
			BaseURL: "",
			Timeout: 15 * time.Second,
		},
		Admin: AdminConfig{
			Addr: "127.0.0.1:9464",
		},
		Relay: RelayConfig{
			Addr:                    ":8090",
			CORSOrigins:             []string{"*"},
			RateLimitReqs:           60,
			RateLimitWindow:         time.Minute,
			ClientMessagesPerSecond: 20,
			ClientBurst:             40,
			NATSSubjectPrefix:       "boardsync.board",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BOARDSYNC_REALTIME_HOST -> realtime.host
	// RELAY_NATS_URL -> relay.nats_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"relay.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML lists arrive as slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment cannot leak in.
var envMappings = map[string]string{
	// Realtime
	"boardsync_realtime_host":          "realtime.host",
	"boardsync_realtime_secure":        "realtime.secure",
	"boardsync_heartbeat_interval":     "realtime.heartbeat_interval",
	"boardsync_heartbeat_timeout":      "realtime.heartbeat_timeout",
	"boardsync_reconnect_base":         "realtime.reconnect_base",
	"boardsync_reconnect_cap":          "realtime.reconnect_cap",
	"boardsync_reconnect_jitter":       "realtime.reconnect_jitter",
	"boardsync_reconnect_max_attempts": "realtime.reconnect_max_attempts",
	"boardsync_dial_timeout":           "realtime.dial_timeout",

	// REST API
	"boardsync_api_url":     "api.base_url",
	"boardsync_api_timeout": "api.timeout",

	// Session
	"boardsync_token":      "auth.token",
	"boardsync_token_file": "auth.token_file",
	"boardsync_board_id":   "board.id",
	"boardsync_admin_addr": "admin.addr",

	// Relay
	"relay_addr":                "relay.addr",
	"relay_cors_origins":        "relay.cors_origins",
	"relay_rate_limit_reqs":     "relay.rate_limit_reqs",
	"relay_rate_limit_window":   "relay.rate_limit_window",
	"relay_client_mps":          "relay.client_messages_per_second",
	"relay_client_burst":        "relay.client_burst",
	"relay_jwt_secret":          "relay.jwt_secret",
	"relay_nats_url":            "relay.nats_url",
	"relay_nats_embedded":       "relay.nats_embedded",
	"relay_nats_subject_prefix": "relay.nats_subject_prefix",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BOARDSYNC_REALTIME_HOST -> realtime.host
//   - BOARDSYNC_API_URL -> api.base_url
//   - RELAY_CLIENT_MPS -> relay.client_messages_per_second
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
