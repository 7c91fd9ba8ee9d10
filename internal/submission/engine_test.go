package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/pkg/domain"
	dErrors "fieldcheck/pkg/domainerrors"
)

func pendingSubmission() Submission {
	return Submission{
		ID:                  domain.NewSubmissionID(),
		BuildingType:        "bungalow",
		BuildingColor:       "cream",
		ClosestLandmark:     "Folagoro Bus Stop",
		Email:               "a@b.com",
		UtilityBillProvided: true,
		SubmittedAt:         time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:              StatusPending,
	}
}

func TestTransition_Verify(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sub := pendingSubmission()

	updated, err := Transition(sub, StatusVerified, "", now)
	require.NoError(t, err)

	assert.Equal(t, StatusVerified, updated.Status)
	require.NotNil(t, updated.VerifiedAt)
	assert.Equal(t, now, *updated.VerifiedAt)
	assert.Nil(t, updated.RejectedAt)
	assert.Nil(t, updated.RejectionReason)
	assert.True(t, updated.InvariantHolds())
}

func TestTransition_Reject(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sub := pendingSubmission()

	updated, err := Transition(sub, StatusRejected, "  utility bill does not match the address  ", now)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, updated.Status)
	require.NotNil(t, updated.RejectedAt)
	assert.Equal(t, now, *updated.RejectedAt)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "utility bill does not match the address", *updated.RejectionReason, "reason is stored trimmed")
	assert.Nil(t, updated.VerifiedAt)
	assert.True(t, updated.InvariantHolds())
}

func TestTransition_RejectRequiresReason(t *testing.T) {
	now := time.Now().UTC()
	for _, reason := range []string{"", " ", "   ", "\t\n"} {
		_, err := Transition(pendingSubmission(), StatusRejected, reason, now)
		require.Error(t, err, "reason %q must be rejected", reason)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingField))
		assert.Equal(t, "rejectionReason is required", dErrors.Message(err))
	}
}

func TestTransition_UnsupportedTargets(t *testing.T) {
	now := time.Now().UTC()
	for _, target := range []Status{StatusPending, Status(""), Status("approved"), Status("VERIFIED"), Status(" verified")} {
		_, err := Transition(pendingSubmission(), target, "", now)
		require.Error(t, err, "target %q must be rejected", target)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedStatus))
		assert.Equal(t, "Unsupported status", dErrors.Message(err))
	}
}

// TestTransition_TerminalStatesAreNotLocked documents that nothing blocks a
// second transition on an already-decided submission. The mutator enforces
// mutual exclusion of the timestamp fields, not one-shot semantics.
func TestTransition_TerminalStatesAreNotLocked(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	verified, err := Transition(pendingSubmission(), StatusVerified, "", t0)
	require.NoError(t, err)

	rejected, err := Transition(verified, StatusRejected, "second reviewer disagreed", t1)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Nil(t, rejected.VerifiedAt, "verification timestamp is cleared on re-decision")
	require.NotNil(t, rejected.RejectedAt)
	assert.Equal(t, t1, *rejected.RejectedAt)
	assert.True(t, rejected.InvariantHolds())
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget(StatusVerified))
	assert.NoError(t, ValidateTarget(StatusRejected))
	assert.Error(t, ValidateTarget(StatusPending))
	assert.Error(t, ValidateTarget(Status("unknown")))
}
