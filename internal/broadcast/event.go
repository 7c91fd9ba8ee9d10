// Package broadcast is the fan-out relay between the submission pipeline and
// the long-lived client channels. Events are ephemeral: delivered at most once
// to each currently-open channel, never persisted, never replayed.
package broadcast

import (
	"encoding/json"
	"fmt"
	"time"

	"fieldcheck/pkg/domain"
)

// EventType tags the four event kinds the pipeline emits.
type EventType string

const (
	EventConnected          EventType = "WS_CONNECTED"
	EventNewSubmission      EventType = "NEW_SUBMISSION"
	EventSubmissionVerified EventType = "SUBMISSION_VERIFIED"
	EventSubmissionRejected EventType = "SUBMISSION_REJECTED"
)

// Event is one frame on the wire: {"type": ..., "payload": ...}. The payload
// type depends on the kind; use the constructors below and switch on Type
// after Decode.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// ConnectedPayload acknowledges a fresh channel with its session id.
type ConnectedPayload struct {
	ID domain.ChannelID `json:"id"`
}

// StatusPayload is the minimal projection sent for verified/rejected events.
// Only the fields for the event's kind are populated.
type StatusPayload struct {
	ID         domain.SubmissionID `json:"id"`
	Status     string              `json:"status"`
	VerifiedAt *time.Time          `json:"verifiedAt,omitempty"`
	RejectedAt *time.Time          `json:"rejectedAt,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// Connected builds the WS_CONNECTED acknowledgement for a new channel.
func Connected(id domain.ChannelID) Event {
	return Event{Type: EventConnected, Payload: ConnectedPayload{ID: id}}
}

// NewSubmission wraps a full submission record. The payload is whatever the
// intake layer hands over; the broadcaster does not interpret it.
func NewSubmission(payload any) Event {
	return Event{Type: EventNewSubmission, Payload: payload}
}

// Verified builds the SUBMISSION_VERIFIED projection.
func Verified(id domain.SubmissionID, verifiedAt time.Time) Event {
	return Event{Type: EventSubmissionVerified, Payload: StatusPayload{
		ID:         id,
		Status:     "verified",
		VerifiedAt: &verifiedAt,
	}}
}

// Rejected builds the SUBMISSION_REJECTED projection.
func Rejected(id domain.SubmissionID, rejectedAt time.Time, reason string) Event {
	return Event{Type: EventSubmissionRejected, Payload: StatusPayload{
		ID:         id,
		Status:     "rejected",
		RejectedAt: &rejectedAt,
		Reason:     reason,
	}}
}

// Decode parses a frame and returns the event with a typed payload:
// ConnectedPayload for WS_CONNECTED, StatusPayload for the two decision
// events, and json.RawMessage for NEW_SUBMISSION (the full submission stays
// opaque to the channel layer). Unknown types are an error so a relay never
// forwards frames it cannot name.
func Decode(data []byte) (Event, error) {
	var frame struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	switch frame.Type {
	case EventConnected:
		var payload ConnectedPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", frame.Type, err)
		}
		return Event{Type: frame.Type, Payload: payload}, nil

	case EventSubmissionVerified, EventSubmissionRejected:
		var payload StatusPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", frame.Type, err)
		}
		return Event{Type: frame.Type, Payload: payload}, nil

	case EventNewSubmission:
		return Event{Type: frame.Type, Payload: frame.Payload}, nil

	default:
		return Event{}, fmt.Errorf("decode event: unknown type %q", frame.Type)
	}
}
