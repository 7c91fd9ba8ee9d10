// Package service implements the intake and review operations on top of the
// submission store, the transition engine, and the event broadcaster.
package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fieldcheck/internal/audit"
	"fieldcheck/internal/broadcast"
	"fieldcheck/internal/platform/metrics"
	"fieldcheck/internal/submission"
	"fieldcheck/pkg/domain"
	dErrors "fieldcheck/pkg/domainerrors"
	"fieldcheck/pkg/platform/sentinel"
	"fieldcheck/pkg/requestcontext"
)

// CreateRequest is the intake payload. Field order matters: validation
// failures report the first missing field, in the order the form collects
// them.
type CreateRequest struct {
	BuildingType        string  `json:"buildingType" validate:"required"`
	BuildingColor       string  `json:"buildingColor" validate:"required"`
	ClosestLandmark     string  `json:"closestLandmark" validate:"required"`
	Email               string  `json:"email" validate:"required"`
	UtilityBillProvided bool    `json:"utilityBillProvided"`
	LivesInEstate       bool    `json:"livesInEstate"`
	GatekeeperPhone     *string `json:"gatekeeperPhone" validate:"required_if=LivesInEstate true"`
}

// UpdateRequest is a reviewer action: verify or reject one submission.
type UpdateRequest struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// Service wires the store, the broadcaster, and the audit trail together.
type Service struct {
	store    submission.Store
	events   broadcast.Publisher
	audit    *audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func New(store submission.Store, events broadcast.Publisher, auditPub *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	v := validator.New()
	// Report json field names so validation errors match the wire contract.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		store:    store,
		events:   events,
		audit:    auditPub,
		logger:   logger,
		metrics:  m,
		validate: v,
	}
}

// Create validates the intake payload, persists the submission as pending,
// and announces it. Publish failures are logged and swallowed: notification
// is best-effort, never transactional with creation.
func (s *Service) Create(ctx context.Context, req CreateRequest) (submission.Submission, error) {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return submission.Submission{}, dErrors.Newf(dErrors.CodeMissingField, "%s is required", fieldErrs[0].Field())
		}
		return submission.Submission{}, dErrors.New(dErrors.CodeInvalidInput, "Invalid request")
	}

	now := requestcontext.Now(ctx).UTC()
	sub := submission.Submission{
		ID:                  domain.NewSubmissionID(),
		BuildingType:        req.BuildingType,
		BuildingColor:       req.BuildingColor,
		ClosestLandmark:     req.ClosestLandmark,
		Email:               req.Email,
		UtilityBillProvided: req.UtilityBillProvided,
		LivesInEstate:       req.LivesInEstate,
		GatekeeperPhone:     req.GatekeeperPhone,
		SubmittedAt:         now,
		Status:              submission.StatusPending,
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return submission.Submission{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}

	if s.metrics != nil {
		s.metrics.SubmissionsCreated.Inc()
	}

	s.publish(ctx, broadcast.NewSubmission(sub))
	s.audit.Emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionReceived,
		SubmissionID: sub.ID,
		Timestamp:    now,
		RequestID:    requestcontext.RequestID(ctx),
	})

	return sub, nil
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]submission.Submission, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list submissions")
	}
	return subs, nil
}

// UpdateStatus applies a reviewer decision and announces the outcome. The
// store serializes transitions per id; engine errors surface to the caller
// unchanged so the reviewer can correct the request.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateRequest) (submission.Submission, error) {
	target := submission.Status(req.Status)
	if err := submission.ValidateTarget(target); err != nil {
		return submission.Submission{}, err
	}

	id, err := domain.ParseSubmissionID(req.ID)
	if err != nil {
		// An unparseable id can never name a stored submission.
		return submission.Submission{}, dErrors.New(dErrors.CodeNotFound, "Submission not found")
	}

	now := requestcontext.Now(ctx).UTC()
	updated, err := s.store.ApplyTransition(ctx, id, target, req.RejectionReason, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return submission.Submission{}, dErrors.New(dErrors.CodeNotFound, "Submission not found")
		}
		if dErrors.HasCode(err, dErrors.CodeMissingField) || dErrors.HasCode(err, dErrors.CodeUnsupportedStatus) {
			return submission.Submission{}, err
		}
		return submission.Submission{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update submission")
	}

	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(updated.Status)).Inc()
	}

	auditEvent := audit.Event{
		SubmissionID: updated.ID,
		Timestamp:    now,
		RequestID:    requestcontext.RequestID(ctx),
	}
	switch updated.Status {
	case submission.StatusVerified:
		s.publish(ctx, broadcast.Verified(updated.ID, *updated.VerifiedAt))
		auditEvent.Action = audit.ActionSubmissionVerified
	case submission.StatusRejected:
		s.publish(ctx, broadcast.Rejected(updated.ID, *updated.RejectedAt, *updated.RejectionReason))
		auditEvent.Action = audit.ActionSubmissionRejected
		auditEvent.Reason = *updated.RejectionReason
	}
	s.audit.Emit(ctx, auditEvent)

	return updated, nil
}

// publish fans an event out, logging failures instead of returning them. The
// broadcaster contract is fire-and-forget: a lost event is recovered by the
// client re-fetching the list, not by failing the business operation.
func (s *Service) publish(ctx context.Context, ev broadcast.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"type", ev.Type,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
