// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package wire

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// EnvelopeType is the only envelope type the board socket carries.
const EnvelopeType = "board_updated"

// Envelope is the JSON frame exchanged over /ws/board/<id>/ in both
// directions.
type Envelope struct {
	Type       string     `json:"type" validate:"required,eq=board_updated"`
	ActionType ActionKind `json:"action_type" validate:"required"`
	Payload    any        `json:"payload"`
	BoardID    int64      `json:"board_id" validate:"gt=0"`
	SenderID   int64      `json:"sender_id" validate:"gte=0"`
}

// NewEnvelope builds an outbound mutation frame.
func NewEnvelope(kind ActionKind, payload any, boardID, senderID int64) Envelope {
	return Envelope{
		Type:       EnvelopeType,
		ActionType: kind,
		Payload:    payload,
		BoardID:    boardID,
		SenderID:   senderID,
	}
}

// HeartbeatPayload is the only payload a heartbeat carries.
type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// NewHeartbeat builds a keepalive frame stamped with at (unix milliseconds).
func NewHeartbeat(boardID, senderID int64, at time.Time) Envelope {
	return NewEnvelope(ActionHeartbeat, HeartbeatPayload{Timestamp: at.UnixMilli()}, boardID, senderID)
}

// IsHeartbeat reports whether e is a keepalive frame.
func (e Envelope) IsHeartbeat() bool {
	return e.ActionType == ActionHeartbeat
}

// ParseEnvelope decodes one inbound frame and checks its envelope fields.
// The payload is left untyped; use ValidatePayload and Decode on it.
func ParseEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if err := validateStruct(&e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	return e, nil
}

// Marshal encodes e for the socket.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
