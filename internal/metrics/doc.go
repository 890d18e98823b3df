// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package metrics defines the Prometheus collectors for the sync client and the
relay.

All collectors are registered on the default registry through promauto and
exposed by the /metrics route of the admin router (cmd/boardsync) and the
relay router (cmd/relay):

	curl http://localhost:9470/metrics

# Available Metrics

Realtime connection:
  - boardsync_realtime_lifecycle_events_total{event}
  - boardsync_realtime_connected
  - boardsync_realtime_reconnect_delay_seconds
  - boardsync_realtime_messages_sent_total
  - boardsync_realtime_messages_received_total
  - boardsync_realtime_messages_dropped_total{reason}

Synchronization:
  - boardsync_sync_messages_rejected_total{reason}
  - boardsync_sync_echoes_suppressed_total
  - boardsync_sync_merges_total{kind,result}
  - boardsync_sync_rollbacks_total{kind}
  - boardsync_drag_results_total{type,outcome}

CRUD client:
  - boardsync_api_requests_total{method,endpoint,status}
  - boardsync_api_request_duration_seconds{method,endpoint}
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Relay:
  - boardsync_relay_clients
  - boardsync_relay_rooms
  - boardsync_relay_broadcasts_total{source}
  - boardsync_relay_messages_rejected_total{reason}
*/
package metrics
