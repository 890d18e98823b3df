// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Realtime connection metrics
	RealtimeLifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_realtime_lifecycle_events_total",
			Help: "Connection lifecycle events by kind",
		},
		[]string{"event"},
	)

	RealtimeConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardsync_realtime_connected",
			Help: "1 while the board socket is open",
		},
	)

	RealtimeReconnectDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boardsync_realtime_reconnect_delay_seconds",
			Help:    "Scheduled reconnect delays",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	RealtimeMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_realtime_messages_sent_total",
			Help: "Envelopes written to the board socket",
		},
	)

	RealtimeMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_realtime_messages_received_total",
			Help: "Frames read from the board socket",
		},
	)

	RealtimeMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_realtime_messages_dropped_total",
			Help: "Outbound envelopes dropped before reaching the socket",
		},
		[]string{"reason"}, // not_open, encode, write
	)

	// Synchronization metrics
	SyncMessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_sync_messages_rejected_total",
			Help: "Inbound or outbound messages rejected by validation",
		},
		[]string{"reason"}, // malformed, wrong_board, unknown_action, invalid_payload
	)

	SyncEchoesSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_sync_echoes_suppressed_total",
			Help: "Inbound broadcasts ignored because this client sent them",
		},
	)

	SyncMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_sync_merges_total",
			Help: "Mutations passed to the merge engine",
		},
		[]string{"kind", "result"}, // result: applied, unchanged
	)

	SyncRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_sync_rollbacks_total",
			Help: "Optimistic mutations discarded after a failed request",
		},
		[]string{"kind"},
	)

	DragResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_drag_results_total",
			Help: "Finished drags by outcome",
		},
		[]string{"type", "outcome"}, // moved, noop, recovered, error
	)

	// CRUD client metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_api_requests_total",
			Help: "Requests made to the board REST API",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardsync_api_request_duration_seconds",
			Help:    "Board REST API latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Served HTTP metrics (control API and relay)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_http_requests_total",
			Help: "HTTP requests served, by server and route pattern",
		},
		[]string{"server", "route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardsync_http_request_duration_seconds",
			Help:    "HTTP request latency, by server and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server", "route"},
	)

	HTTPActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boardsync_http_active_requests",
			Help: "HTTP requests currently in flight",
		},
		[]string{"server"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Relay metrics
	RelayClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardsync_relay_clients",
			Help: "Sockets connected to the relay",
		},
	)

	RelayRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardsync_relay_rooms",
			Help: "Boards with at least one connected socket",
		},
	)

	RelayBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_relay_broadcasts_total",
			Help: "Envelopes fanned out to a board room",
		},
		[]string{"source"}, // local, nats
	)

	RelayMessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_relay_messages_rejected_total",
			Help: "Inbound relay frames dropped",
		},
		[]string{"reason"}, // rate_limited, malformed, unknown_kind, board_mismatch, sender_mismatch, hub_full, bad_subject
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boardsync_info",
			Help: "Build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordLifecycle counts one connection lifecycle event.
func RecordLifecycle(event string) {
	RealtimeLifecycleEvents.WithLabelValues(event).Inc()
}

// SetConnected tracks whether the board socket is open.
func SetConnected(open bool) {
	if open {
		RealtimeConnected.Set(1)
	} else {
		RealtimeConnected.Set(0)
	}
}

// RecordReconnectDelay observes a scheduled reconnect delay.
func RecordReconnectDelay(d time.Duration) {
	RealtimeReconnectDelay.Observe(d.Seconds())
}

// RecordSend counts a written envelope, or a dropped one when reason is set.
func RecordSend(dropReason string) {
	if dropReason == "" {
		RealtimeMessagesSent.Inc()
		return
	}
	RealtimeMessagesDropped.WithLabelValues(dropReason).Inc()
}

// RecordReceive counts an inbound frame.
func RecordReceive() {
	RealtimeMessagesReceived.Inc()
}

// RecordRejected counts a message dropped by validation.
func RecordRejected(reason string) {
	SyncMessagesRejected.WithLabelValues(reason).Inc()
}

// RecordEchoSuppressed counts an ignored self-echo.
func RecordEchoSuppressed() {
	SyncEchoesSuppressed.Inc()
}

// RecordMerge counts a mutation handed to the merge engine.
func RecordMerge(kind string, changed bool) {
	result := "unchanged"
	if changed {
		result = "applied"
	}
	SyncMerges.WithLabelValues(kind, result).Inc()
}

// RecordRollback counts a discarded optimistic mutation.
func RecordRollback(kind string) {
	SyncRollbacks.WithLabelValues(kind).Inc()
}

// RecordDragResult counts a finished drag.
func RecordDragResult(dragType, outcome string) {
	DragResults.WithLabelValues(dragType, outcome).Inc()
}

// RecordAPIRequest records one REST call. status is 0 for transport errors.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request. route is the matched
// route pattern, never the raw path.
func RecordHTTPRequest(server, route, method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(server, route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(server, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge for server.
func TrackActiveRequest(server string, start bool) {
	if start {
		HTTPActiveRequests.WithLabelValues(server).Inc()
		return
	}
	HTTPActiveRequests.WithLabelValues(server).Dec()
}

// RecordRelayBroadcast counts a fan-out from source ("local" or "nats").
func RecordRelayBroadcast(source string) {
	RelayBroadcasts.WithLabelValues(source).Inc()
}

// RecordRelayRejected counts a dropped relay frame.
func RecordRelayRejected(reason string) {
	RelayMessagesRejected.WithLabelValues(reason).Inc()
}
