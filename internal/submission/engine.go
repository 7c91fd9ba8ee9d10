package submission

import (
	"strings"
	"time"

	dErrors "fieldcheck/pkg/domainerrors"
)

// Transition applies a reviewer action to a submission and returns the updated
// record. It is a pure function; stores call it under their own lock and
// persist the result.
//
// Only verified and rejected are legal targets. Pending is an initial state,
// never the target of a reviewer action. Rejection requires a non-empty reason
// after trimming.
//
// A submission already in a terminal state is transitioned again without
// complaint. Reviewer actions are expected to arrive once per submission and
// nothing upstream enforces that yet; tests exercise the double-transition
// case deliberately so the behavior stays documented.
func Transition(sub Submission, target Status, reason string, now time.Time) (Submission, error) {
	if err := ValidateTarget(target); err != nil {
		return Submission{}, err
	}
	switch target {
	case StatusVerified:
		verifiedAt := now
		sub.Status = StatusVerified
		sub.VerifiedAt = &verifiedAt
		sub.RejectedAt = nil
		sub.RejectionReason = nil
		return sub, nil

	case StatusRejected:
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return Submission{}, dErrors.New(dErrors.CodeMissingField, "rejectionReason is required")
		}
		rejectedAt := now
		sub.Status = StatusRejected
		sub.RejectedAt = &rejectedAt
		sub.RejectionReason = &trimmed
		sub.VerifiedAt = nil
		return sub, nil

	default:
		// Unreachable after ValidateTarget; kept so the switch stays total.
		return Submission{}, dErrors.New(dErrors.CodeUnsupportedStatus, "Unsupported status")
	}
}

// ValidateTarget rejects any transition target other than verified or
// rejected. Stores call it before looking up the submission so an unsupported
// status is reported ahead of not-found, matching the review API contract.
func ValidateTarget(target Status) error {
	if target != StatusVerified && target != StatusRejected {
		return dErrors.New(dErrors.CodeUnsupportedStatus, "Unsupported status")
	}
	return nil
}
