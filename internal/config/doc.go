// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package config loads Boardsync configuration with Koanf v2.

Sources are layered, later layers winning:
  - Struct defaults (defaultConfig)
  - A YAML file: $CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/boardsync/config.yaml
  - Environment variables listed in envMappings

# Sections

  - realtime: relay host, heartbeat timing, reconnect policy
  - api: board REST API base URL and timeout
  - auth: session token or token file
  - board: board opened at startup
  - admin: client metrics/health listener
  - relay: development relay listener, limits, JWT secret, NATS bridge
  - logging: zerolog level, format, caller

# Example

	realtime:
	  host: localhost:8090
	  reconnect_max_attempts: 10
	api:
	  base_url: http://localhost:8000/api
	auth:
	  token_file: /run/secrets/boardsync-token
	board:
	  id: 42

Validate checks that present values are well formed; ValidateClient and
ValidateRelay add the requirements of each binary.
*/
package config
