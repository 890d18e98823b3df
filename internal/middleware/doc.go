// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package middleware provides the chi middleware shared by the relay router
and the client's control API.

  - RequestID: honours or generates X-Request-ID and puts it on the request
    context as the logging correlation id
  - Metrics: counts and times requests per route pattern, labelled with the
    server name

Both work on websocket upgrade routes: Metrics wraps the response writer
with chi's WrapResponseWriter, which keeps http.Hijacker.

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics("relay"))
*/
package middleware
