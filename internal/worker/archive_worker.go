package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/repository"
)

// ArchiveWorker persists ticket snapshots and audit history off the command
// path. Events are queued by the dispatcher handlers and written by Run.
type ArchiveWorker struct {
	tickets repository.TicketRepository
	history repository.TicketHistoryRepository
	queue   chan events.Event
	logger  *zap.Logger
}

// NewArchiveWorker builds a worker with a queue of the given depth.
func NewArchiveWorker(tickets repository.TicketRepository, history repository.TicketHistoryRepository, depth int, logger *zap.Logger) *ArchiveWorker {
	if depth <= 0 {
		depth = 256
	}
	return &ArchiveWorker{tickets: tickets, history: history, queue: make(chan events.Event, depth), logger: logger}
}

// Register subscribes the worker to ticket events.
func (w *ArchiveWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketChanged, w.enqueue)
	dispatcher.Subscribe(events.EventTicketRemoved, w.enqueue)
}

func (w *ArchiveWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("archive queue full; dropping event",
			zap.String("event_type", string(event.Type)), zap.Int64("ticket_id", event.TicketID))
	}
	return nil
}

// Run writes queued events until ctx is done, then drains what is left.
func (w *ArchiveWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.handle(ctx, event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *ArchiveWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.handle(context.Background(), event)
		default:
			return
		}
	}
}

func (w *ArchiveWorker) handle(ctx context.Context, event events.Event) {
	switch payload := event.Payload.(type) {
	case events.TicketChangedPayload:
		if payload.Ticket == nil {
			return
		}
		if err := w.tickets.Upsert(ctx, payload.Ticket, payload.Local); err != nil {
			w.logger.Error("archive ticket failed", zap.Int64("ticket_id", event.TicketID), zap.Error(err))
			return
		}
		if _, err := w.history.Append(ctx, payload.Ticket.ID, payload.Ticket.History); err != nil {
			w.logger.Error("archive history failed", zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		}
	case events.TicketRemovedPayload:
		if err := w.tickets.MarkMerged(ctx, event.TicketID, payload.MergedInto); err != nil {
			w.logger.Warn("mark merged failed", zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		}
	}
}
