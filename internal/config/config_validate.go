// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength matches auth.MinSecretLength.
const minJWTSecretLength = 32

// Validate checks that every configured value is well formed. Settings
// that only one binary needs are checked by ValidateClient and ValidateRelay.
func (c *Config) Validate() error {
	if err := c.validateRealtime(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if c.Board.ID < 0 {
		return fmt.Errorf("BOARDSYNC_BOARD_ID must not be negative, got %d", c.Board.ID)
	}

	if err := c.validateRelay(); err != nil {
		return err
	}

	return c.validateLogging()
}

// ValidateClient checks the settings required to run the sync client.
func (c *Config) ValidateClient() error {
	if c.Realtime.Host == "" {
		return fmt.Errorf("BOARDSYNC_REALTIME_HOST is required")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("BOARDSYNC_API_URL is required")
	}
	if c.Board.ID == 0 {
		return fmt.Errorf("BOARDSYNC_BOARD_ID is required")
	}
	if c.Auth.Token == "" && c.Auth.TokenFile == "" {
		return fmt.Errorf("one of BOARDSYNC_TOKEN or BOARDSYNC_TOKEN_FILE is required")
	}
	return nil
}

// ValidateRelay checks the settings required to run the relay.
func (c *Config) ValidateRelay() error {
	if c.Relay.Addr == "" {
		return fmt.Errorf("RELAY_ADDR is required")
	}
	return c.validateJWTSecret()
}

// validateRealtime validates the realtime section
func (c *Config) validateRealtime() error {
	r := &c.Realtime
	if r.Host != "" {
		if err := validateRealtimeHost(r.Host); err != nil {
			return fmt.Errorf("BOARDSYNC_REALTIME_HOST is invalid: %w", err)
		}
	}
	if r.HeartbeatInterval > 0 && r.HeartbeatTimeout <= r.HeartbeatInterval {
		return fmt.Errorf("BOARDSYNC_HEARTBEAT_TIMEOUT (%v) must exceed BOARDSYNC_HEARTBEAT_INTERVAL (%v)",
			r.HeartbeatTimeout, r.HeartbeatInterval)
	}
	if r.ReconnectBase <= 0 {
		return fmt.Errorf("BOARDSYNC_RECONNECT_BASE must be positive, got %v", r.ReconnectBase)
	}
	if r.ReconnectCap < r.ReconnectBase {
		return fmt.Errorf("BOARDSYNC_RECONNECT_CAP (%v) must not be less than BOARDSYNC_RECONNECT_BASE (%v)",
			r.ReconnectCap, r.ReconnectBase)
	}
	if r.ReconnectJitter < 0 {
		return fmt.Errorf("BOARDSYNC_RECONNECT_JITTER must not be negative, got %v", r.ReconnectJitter)
	}
	if r.ReconnectMaxAttempts < 1 {
		return fmt.Errorf("BOARDSYNC_RECONNECT_MAX_ATTEMPTS must be at least 1, got %d", r.ReconnectMaxAttempts)
	}
	if r.DialTimeout <= 0 {
		return fmt.Errorf("BOARDSYNC_DIAL_TIMEOUT must be positive, got %v", r.DialTimeout)
	}
	return nil
}

// validateAPI validates the REST API section
func (c *Config) validateAPI() error {
	if c.API.BaseURL != "" {
		if err := validateAPIURL(c.API.BaseURL); err != nil {
			return fmt.Errorf("BOARDSYNC_API_URL is invalid: %w", err)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("BOARDSYNC_API_TIMEOUT must be positive, got %v", c.API.Timeout)
	}
	return nil
}

// validateRelay validates the relay section
func (c *Config) validateRelay() error {
	r := &c.Relay
	if r.RateLimitReqs < 0 {
		return fmt.Errorf("RELAY_RATE_LIMIT_REQS must not be negative, got %d", r.RateLimitReqs)
	}
	if r.RateLimitReqs > 0 && r.RateLimitWindow <= 0 {
		return fmt.Errorf("RELAY_RATE_LIMIT_WINDOW must be positive when RELAY_RATE_LIMIT_REQS is set")
	}
	if r.ClientMessagesPerSecond < 0 {
		return fmt.Errorf("RELAY_CLIENT_MPS must not be negative, got %v", r.ClientMessagesPerSecond)
	}
	if r.ClientMessagesPerSecond > 0 && r.ClientBurst < 1 {
		return fmt.Errorf("RELAY_CLIENT_BURST must be at least 1 when RELAY_CLIENT_MPS is set")
	}
	if r.NATSURL != "" {
		if err := validateNATSURL(r.NATSURL); err != nil {
			return fmt.Errorf("RELAY_NATS_URL is invalid: %w", err)
		}
	}
	if r.BridgeEnabled() && strings.TrimSpace(r.NATSSubjectPrefix) == "" {
		return fmt.Errorf("RELAY_NATS_SUBJECT_PREFIX is required when the NATS bridge is enabled")
	}
	if strings.ContainsAny(r.NATSSubjectPrefix, "*> ") {
		return fmt.Errorf("RELAY_NATS_SUBJECT_PREFIX must not contain wildcards or spaces")
	}
	return nil
}

// validateJWTSecret validates the relay JWT secret
func (c *Config) validateJWTSecret() error {
	if c.Relay.JWTSecret == "" {
		return fmt.Errorf("RELAY_JWT_SECRET is required")
	}
	if len(c.Relay.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("RELAY_JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Relay.JWTSecret) {
		return fmt.Errorf("RELAY_JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
