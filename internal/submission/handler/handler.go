// Package handler is the thin HTTP layer over the submission service. It
// decodes requests, delegates, and renders; business logic stays in the
// service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldcheck/internal/submission"
	"fieldcheck/internal/submission/service"
	"fieldcheck/internal/transport/http/shared"
	dErrors "fieldcheck/pkg/domainerrors"
	"fieldcheck/pkg/requestcontext"
)

// Service defines the interface for submission operations.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (submission.Submission, error)
	List(ctx context.Context) ([]submission.Submission, error)
	UpdateStatus(ctx context.Context, req service.UpdateRequest) (submission.Submission, error)
}

// Handler handles the submission intake and review endpoints.
type Handler struct {
	logger *slog.Logger
	svc    Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, svc: svc}
}

// Register registers the submission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions", h.handleCreate)
	r.Get("/submissions", h.handleList)
	r.Patch("/submissions", h.handleUpdateStatus)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create submission body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Invalid request"))
		return
	}

	sub, err := h.svc.Create(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "create submission failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.svc.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list submissions failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid update status body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Invalid request"))
		return
	}

	sub, err := h.svc.UpdateStatus(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "update submission status failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, sub)
}

// writeServiceError logs internal failures and renders the caller-visible
// message. Caller-correctable errors (missing reason, unsupported status,
// not found) pass through without noise.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
