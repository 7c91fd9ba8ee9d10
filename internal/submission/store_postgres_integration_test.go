//go:build integration

package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fieldcheck/pkg/domain"
	dErrors "fieldcheck/pkg/domainerrors"
	"fieldcheck/pkg/platform/sentinel"
	"fieldcheck/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)

	s := &PostgresStoreSuite{
		ctx:   context.Background(),
		store: NewPostgres(pg.DB),
	}
	if err := s.store.Migrate(s.ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) seed(submittedAt time.Time) Submission {
	sub := Submission{
		ID:                  domain.NewSubmissionID(),
		BuildingType:        "bungalow",
		BuildingColor:       "cream",
		ClosestLandmark:     "Folagoro Bus Stop",
		Email:               "a@b.com",
		UtilityBillProvided: true,
		SubmittedAt:         submittedAt,
		Status:              StatusPending,
	}
	s.Require().NoError(s.store.Create(s.ctx, sub))
	return sub
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	sub := s.seed(time.Now().UTC().Truncate(time.Microsecond))

	got, err := s.store.Get(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, got.ID)
	s.Equal(sub.BuildingType, got.BuildingType)
	s.Equal(StatusPending, got.Status)
	s.True(sub.SubmittedAt.Equal(got.SubmittedAt))
	s.Nil(got.VerifiedAt)
	s.Nil(got.RejectedAt)
	s.Nil(got.RejectionReason)
}

func (s *PostgresStoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(s.ctx, domain.NewSubmissionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestGatekeeperPhoneRoundTrip() {
	phone := "+2348012345678"
	sub := s.seed(time.Now().UTC())
	sub2 := Submission{
		ID:              domain.NewSubmissionID(),
		BuildingType:    "duplex",
		BuildingColor:   "white",
		ClosestLandmark: "Yaba Market",
		Email:           "b@c.com",
		LivesInEstate:   true,
		GatekeeperPhone: &phone,
		SubmittedAt:     time.Now().UTC(),
		Status:          StatusPending,
	}
	s.Require().NoError(s.store.Create(s.ctx, sub2))

	got, err := s.store.Get(s.ctx, sub2.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.GatekeeperPhone)
	s.Equal(phone, *got.GatekeeperPhone)

	plain, err := s.store.Get(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Nil(plain.GatekeeperPhone)
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	older := s.seed(base.Add(-2 * time.Hour))
	newer := s.seed(base.Add(time.Hour))

	listed, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(listed), 2)

	var olderIdx, newerIdx = -1, -1
	for i, sub := range listed {
		switch sub.ID {
		case older.ID:
			olderIdx = i
		case newer.ID:
			newerIdx = i
		}
	}
	s.Require().NotEqual(-1, olderIdx)
	s.Require().NotEqual(-1, newerIdx)
	s.Less(newerIdx, olderIdx, "newer submissions list first")
}

func (s *PostgresStoreSuite) TestApplyTransitionVerify() {
	sub := s.seed(time.Now().UTC())
	now := time.Now().UTC().Truncate(time.Microsecond)

	updated, err := s.store.ApplyTransition(s.ctx, sub.ID, StatusVerified, "", now)
	s.Require().NoError(err)
	s.Equal(StatusVerified, updated.Status)
	s.Require().NotNil(updated.VerifiedAt)
	s.True(now.Equal(*updated.VerifiedAt))

	got, err := s.store.Get(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(StatusVerified, got.Status)
	s.True(got.InvariantHolds())
}

func (s *PostgresStoreSuite) TestApplyTransitionReject() {
	sub := s.seed(time.Now().UTC())
	now := time.Now().UTC().Truncate(time.Microsecond)

	updated, err := s.store.ApplyTransition(s.ctx, sub.ID, StatusRejected, "  utility bill mismatch ", now)
	s.Require().NoError(err)
	s.Equal(StatusRejected, updated.Status)
	s.Require().NotNil(updated.RejectionReason)
	s.Equal("utility bill mismatch", *updated.RejectionReason)

	got, err := s.store.Get(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.True(got.InvariantHolds())
}

func (s *PostgresStoreSuite) TestApplyTransitionUnknownID() {
	_, err := s.store.ApplyTransition(s.ctx, domain.NewSubmissionID(), StatusVerified, "", time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestApplyTransitionChecksTargetBeforeLookup() {
	_, err := s.store.ApplyTransition(s.ctx, domain.NewSubmissionID(), Status("approved"), "", time.Now().UTC())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnsupportedStatus))
}

func (s *PostgresStoreSuite) TestApplyTransitionRejectWithoutReasonRollsBack() {
	sub := s.seed(time.Now().UTC())

	_, err := s.store.ApplyTransition(s.ctx, sub.ID, StatusRejected, " ", time.Now().UTC())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingField))

	got, err := s.store.Get(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(StatusPending, got.Status)
}
