package audit

import (
	"context"
	"log/slog"
)

// Publisher hands events to the worker through a buffered channel. Emit never
// blocks: when the buffer is full the event is dropped and counted in the
// logs. The audit trail is operational, not transactional with the business
// operation, so losing an entry under pressure beats stalling intake.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit queues an event for persistence.
func (p *Publisher) Emit(_ context.Context, event Event) {
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"submission_id", event.SubmissionID,
		)
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
