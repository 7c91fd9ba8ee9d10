package submission

import (
	"context"
	"time"

	"fieldcheck/pkg/domain"
)

// Store is the authoritative table of submissions. Implementations must make
// Create and ApplyTransition atomic with respect to each other for the same
// id, and must serialize concurrent transitions on one id so no update is
// lost.
type Store interface {
	// Create inserts a new submission. The caller provides a fully-formed
	// record (id, timestamps, pending status).
	Create(ctx context.Context, sub Submission) error

	// Get returns the submission or sentinel.ErrNotFound.
	Get(ctx context.Context, id domain.SubmissionID) (Submission, error)

	// List returns all submissions newest-first.
	List(ctx context.Context) ([]Submission, error)

	// ApplyTransition validates the target via the transition engine, applies
	// it, replaces the stored record, and returns the updated copy. Unknown
	// ids yield sentinel.ErrNotFound; engine errors pass through unchanged.
	ApplyTransition(ctx context.Context, id domain.SubmissionID, target Status, reason string, now time.Time) (Submission, error)
}
