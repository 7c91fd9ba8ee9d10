// Package audit records the submission lifecycle for back-office compliance:
// who submitted, what the reviewer decided, and when. Events are emitted from
// domain logic and persisted by a background worker so the intake path never
// blocks on the trail.
package audit

import (
	"context"
	"time"

	"fieldcheck/pkg/domain"
)

// Action names what happened to a submission.
type Action string

const (
	ActionSubmissionReceived Action = "submission_received"
	ActionSubmissionVerified Action = "submission_verified"
	ActionSubmissionRejected Action = "submission_rejected"
)

// Event is one audit trail entry. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	Action       Action
	SubmissionID domain.SubmissionID
	Timestamp    time.Time
	RequestID    string
	// Reason carries the rejection reason for ActionSubmissionRejected.
	Reason string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	// List returns events for one submission, oldest first.
	List(ctx context.Context, id domain.SubmissionID) ([]Event, error)
}
