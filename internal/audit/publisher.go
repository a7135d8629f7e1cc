package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is the persistence sink for audit events. Append-only by contract.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByParticipant(ctx context.Context, participantID string) ([]Event, error)
}

// Recorder is what domain services hold: fire an event, never block the
// request path on the sink.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Publisher captures structured audit events synchronously. It uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"error", err,
		)
	}
}

// AsyncPublisher hands events to a background worker over a channel. A full
// inbox drops the event with a log line rather than stalling the request.
type AsyncPublisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewAsyncPublisher(inbox chan<- Event, logger *slog.Logger) *AsyncPublisher {
	return &AsyncPublisher{inbox: inbox, logger: logger}
}

func (p *AsyncPublisher) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"participant_id", event.ParticipantID,
		)
	}
}
