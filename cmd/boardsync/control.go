// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/boardsync/internal/authz"
	"github.com/tomtom215/boardsync/internal/boardapi"
	"github.com/tomtom215/boardsync/internal/drag"
	"github.com/tomtom215/boardsync/internal/livesync"
	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/middleware"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/validation"
	"github.com/tomtom215/boardsync/internal/wire"
)

const maxControlBody = 64 << 10

// connStatus is the part of realtime.Manager the health check reads.
type connStatus interface {
	IsOpen() bool
	BoardID() int64
	Exhausted() bool
}

// boardView is the part of livesync.Store the control API reads.
type boardView interface {
	Loaded() bool
	Snapshot() *models.Board
}

// dragTarget is the part of drag.Engine the UI shell drives.
type dragTarget interface {
	Start(ctx context.Context, s drag.Start)
	Update(u drag.Update)
	PointerMove(p drag.Point)
	PointerUp()
	End(ctx context.Context, r drag.DropResult) error
	Active() bool
}

// cardMutator is livesync.Mutations.
type cardMutator interface {
	CreateCard(ctx context.Context, in boardapi.CardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, id int64, fields map[string]any) (*models.Card, error)
	DeleteCard(ctx context.Context, id int64) error
	AddComment(ctx context.Context, cardID int64, text string) (*models.Comment, error)
	AddChecklistItem(ctx context.Context, checklistID int64, text string) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, args wire.DeleteChecklistItemArgs) error
}

type controlDeps struct {
	// ctx outlives single requests; drags and their forced finishes run
	// under it.
	ctx      context.Context
	conn     connStatus
	board    boardView
	engine   dragTarget
	viewport *shellViewport
	remounts *remountSignal
	cards    cardMutator
}

type controlError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type controlResponse struct {
	Status string        `json:"status"`
	Data   any           `json:"data,omitempty"`
	Error  *controlError `json:"error,omitempty"`
}

// pointerReport is one pointer sample from the shell. Bounds is the board
// view's visible area and may be omitted when it has not changed.
type pointerReport struct {
	drag.Point
	Bounds *drag.Rect `json:"bounds,omitempty"`
}

// scrollStep is the scroll the shell should apply to the board view.
type scrollStep struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// dragStatus is polled by the shell. Remount is bumped after every forced
// finish; the shell rebuilds its drag context when it changes.
type dragStatus struct {
	Active  bool   `json:"active"`
	Remount uint64 `json:"remount"`
}

type cardRequest struct {
	ListID      int64  `json:"list" validate:"gt=0"`
	Title       string `json:"title" validate:"required,max=512"`
	Description string `json:"description"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}

type healthStatus struct {
	Status    string `json:"status"`
	BoardID   int64  `json:"board_id"`
	Connected bool   `json:"connected"`
	Loaded    bool   `json:"loaded"`
	Exhausted bool   `json:"reconnect_exhausted"`
}

func respondJSON(w http.ResponseWriter, status int, resp controlResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal control response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write control response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, controlResponse{
		Status: "error",
		Error:  &controlError{Code: code, Message: message},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxControlBody))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return false
	}
	return true
}

// newControlRouter builds the local control API. It binds to loopback by
// default and carries no auth of its own.
func newControlRouter(d controlDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics("control"))

	r.Get("/healthz", d.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/board", d.snapshot)

	r.Route("/drag", func(r chi.Router) {
		r.Get("/", d.dragState)
		r.Post("/start", d.dragStart)
		r.Post("/update", d.dragUpdate)
		r.Post("/pointer", d.dragPointer)
		r.Post("/pointer-up", d.dragPointerUp)
		r.Post("/end", d.dragEnd)
	})

	r.Route("/cards", func(r chi.Router) {
		r.Post("/", d.createCard)
		r.Patch("/{cardID}", d.updateCard)
		r.Delete("/{cardID}", d.deleteCard)
		r.Post("/{cardID}/comments", d.addComment)
	})
	r.Route("/checklists/{checklistID}/items", func(r chi.Router) {
		r.Post("/", d.addChecklistItem)
		r.Delete("/{itemID}", d.deleteChecklistItem)
	})
	return r
}

// pathID reads a positive id from the URL parameter key.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "BAD_IDENTIFIER", key+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func validBody(w http.ResponseWriter, v any) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
		return false
	}
	return true
}

// respondMutationError maps a failed move or edit onto the control API.
// Failed requests have already triggered a refetch of the board.
func respondMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, drag.ErrBadIdentifier):
		respondError(w, http.StatusBadRequest, "BAD_IDENTIFIER", err.Error())
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN", "role may not perform this change")
	case errors.Is(err, livesync.ErrNoBoard):
		respondError(w, http.StatusConflict, "NO_BOARD", "no board is loaded")
	case errors.Is(err, boardapi.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "entity not found, board was refetched")
	default:
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Board change failed")
		respondError(w, http.StatusBadGateway, "MUTATION_FAILED", "request failed, board was refetched")
	}
}

func (d controlDeps) health(w http.ResponseWriter, _ *http.Request) {
	h := healthStatus{
		Status:    "healthy",
		BoardID:   d.conn.BoardID(),
		Connected: d.conn.IsOpen(),
		Loaded:    d.board.Loaded(),
		Exhausted: d.conn.Exhausted(),
	}
	code := http.StatusOK
	switch {
	case h.Exhausted:
		h.Status = "disconnected"
		code = http.StatusServiceUnavailable
	case !h.Connected || !h.Loaded:
		h.Status = "degraded"
	}
	respondJSON(w, code, controlResponse{Status: "success", Data: h})
}

func (d controlDeps) snapshot(w http.ResponseWriter, _ *http.Request) {
	b := d.board.Snapshot()
	if b == nil {
		respondError(w, http.StatusNotFound, "NO_BOARD", "no board is loaded")
		return
	}
	respondJSON(w, http.StatusOK, controlResponse{Status: "success", Data: b})
}

func (d controlDeps) dragState(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, controlResponse{Status: "success", Data: dragStatus{
		Active:  d.engine.Active(),
		Remount: d.remounts.generation(),
	}})
}

func (d controlDeps) dragStart(w http.ResponseWriter, r *http.Request) {
	var s drag.Start
	if !decodeBody(w, r, &s) {
		return
	}
	if s.DraggableID == "" || (s.Type != drag.TypeList && s.Type != drag.TypeCard) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "draggableId and a known type are required")
		return
	}
	// Scroll left over from an earlier drag is stale.
	d.viewport.take()
	d.engine.Start(d.ctx, s)
	w.WriteHeader(http.StatusNoContent)
}

func (d controlDeps) dragUpdate(w http.ResponseWriter, r *http.Request) {
	var u drag.Update
	if !decodeBody(w, r, &u) {
		return
	}
	d.engine.Update(u)
	w.WriteHeader(http.StatusNoContent)
}

// dragPointer feeds the autoscroller and answers with the scroll it applied
// to the board view since the previous report.
func (d controlDeps) dragPointer(w http.ResponseWriter, r *http.Request) {
	var p pointerReport
	if !decodeBody(w, r, &p) {
		return
	}
	if p.Bounds != nil {
		d.viewport.setBounds(*p.Bounds)
	}
	d.engine.PointerMove(p.Point)
	dx, dy := d.viewport.take()
	respondJSON(w, http.StatusOK, controlResponse{Status: "success", Data: scrollStep{DX: dx, DY: dy}})
}

func (d controlDeps) dragPointerUp(w http.ResponseWriter, _ *http.Request) {
	d.engine.PointerUp()
	w.WriteHeader(http.StatusNoContent)
}

func (d controlDeps) dragEnd(w http.ResponseWriter, r *http.Request) {
	var res drag.DropResult
	if !decodeBody(w, r, &res) {
		return
	}
	if err := d.engine.End(d.ctx, res); err != nil {
		respondMutationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d controlDeps) createCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodeBody(w, r, &req) || !validBody(w, &req) {
		return
	}
	card, err := d.cards.CreateCard(d.ctx, boardapi.CardInput{
		ListID:      req.ListID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondMutationError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, controlResponse{Status: "success", Data: card})
}

func (d controlDeps) updateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "cardID")
	if !ok {
		return
	}
	var fields map[string]any
	if !decodeBody(w, r, &fields) {
		return
	}
	delete(fields, "id")
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}
	card, err := d.cards.UpdateCard(d.ctx, id, fields)
	if err != nil {
		respondMutationError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, controlResponse{Status: "success", Data: card})
}

func (d controlDeps) deleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "cardID")
	if !ok {
		return
	}
	if err := d.cards.DeleteCard(d.ctx, id); err != nil {
		respondMutationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d controlDeps) addComment(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID")
	if !ok {
		return
	}
	var req textRequest
	if !decodeBody(w, r, &req) || !validBody(w, &req) {
		return
	}
	comment, err := d.cards.AddComment(d.ctx, cardID, req.Text)
	if err != nil {
		respondMutationError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, controlResponse{Status: "success", Data: comment})
}

func (d controlDeps) addChecklistItem(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "checklistID")
	if !ok {
		return
	}
	var req textRequest
	if !decodeBody(w, r, &req) || !validBody(w, &req) {
		return
	}
	item, err := d.cards.AddChecklistItem(d.ctx, checklistID, req.Text)
	if err != nil {
		respondMutationError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, controlResponse{Status: "success", Data: item})
}

func (d controlDeps) deleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "checklistID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	args := wire.DeleteChecklistItemArgs{ChecklistID: checklistID, ItemID: itemID}
	if err := d.cards.DeleteChecklistItem(d.ctx, args); err != nil {
		respondMutationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
