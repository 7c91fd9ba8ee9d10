package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's inbox and persists them.
// Persistence failures are logged, not fatal; the worker keeps draining.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"submission_id", event.SubmissionID,
					"error", err,
				)
			}
		}
	}
}
