// Package submission holds the Submission record, its status lifecycle, and
// the stores that own it.
package submission

import (
	"time"

	"fieldcheck/pkg/domain"
)

// Status is the lifecycle state of a submission. A submission starts pending
// and moves exactly once to verified or rejected; both are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Submission is a single applicant's manual address-verification request
// awaiting reviewer action. The applicant-supplied fields are immutable after
// creation; only the status block changes, and only through the transition
// engine.
type Submission struct {
	ID                  domain.SubmissionID `json:"id"`
	BuildingType        string              `json:"buildingType"`
	BuildingColor       string              `json:"buildingColor"`
	ClosestLandmark     string              `json:"closestLandmark"`
	Email               string              `json:"email"`
	UtilityBillProvided bool                `json:"utilityBillProvided"`
	LivesInEstate       bool                `json:"livesInEstate"`
	GatekeeperPhone     *string             `json:"gatekeeperPhone"`
	SubmittedAt         time.Time           `json:"submittedAt"`
	Status              Status              `json:"status"`
	VerifiedAt          *time.Time          `json:"verifiedAt"`
	RejectedAt          *time.Time          `json:"rejectedAt"`
	RejectionReason     *string             `json:"rejectionReason"`
}

// InvariantHolds reports whether exactly one of the three legal states holds:
// pending, verified with a timestamp, or rejected with a timestamp and reason.
// Stores assert this after every mutation in tests.
func (s Submission) InvariantHolds() bool {
	switch s.Status {
	case StatusPending:
		return s.VerifiedAt == nil && s.RejectedAt == nil && s.RejectionReason == nil
	case StatusVerified:
		return s.VerifiedAt != nil && s.RejectedAt == nil && s.RejectionReason == nil
	case StatusRejected:
		return s.RejectedAt != nil && s.RejectionReason != nil && *s.RejectionReason != "" && s.VerifiedAt == nil
	default:
		return false
	}
}
