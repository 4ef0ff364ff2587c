package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/events"
)

// Notification is one message surfaced to an agent.
type Notification struct {
	ID       string                   `json:"id"`
	Seq      uint64                   `json:"seq"`
	Level    events.NotificationLevel `json:"level"`
	Message  string                   `json:"message"`
	TicketID int64                    `json:"ticket_id,omitempty"`
	Actor    string                   `json:"actor"`
	At       string                   `json:"at"`
}

// NotificationService collects notifications from domain events into a
// bounded buffer the console reads from.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu    sync.RWMutex
	buf   []Notification
	size  int
	next  int
	count int
	seq   uint64
}

// NewNotificationService creates the service keeping the last size entries.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, size int) *NotificationService {
	if size <= 0 {
		size = 50
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		buf:        make([]Notification, size),
		size:       size,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventNotification, n.handleNotification)
	n.dispatcher.Subscribe(events.EventTicketChanged, n.handleTicketChanged)
	n.dispatcher.Subscribe(events.EventTicketRemoved, n.handleTicketRemoved)
}

func (n *NotificationService) handleNotification(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.NotificationPayload)
	if !ok {
		return nil
	}
	n.mu.Lock()
	n.seq++
	n.buf[n.next] = Notification{
		ID:       event.ID,
		Seq:      n.seq,
		Level:    payload.Level,
		Message:  payload.Message,
		TicketID: event.TicketID,
		Actor:    event.Actor,
		At:       event.Timestamp.UTC().Format(time.RFC3339),
	}
	n.next = (n.next + 1) % n.size
	if n.count < n.size {
		n.count++
	}
	n.mu.Unlock()
	return nil
}

func (n *NotificationService) handleTicketChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketChanged",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("op", payload.Op),
		zap.Bool("local", payload.Local),
		zap.String("actor", event.Actor))
	return nil
}

func (n *NotificationService) handleTicketRemoved(_ context.Context, event events.Event) error {
	n.logger.Info("TicketRemoved", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

// Since returns buffered notifications with Seq greater than after, oldest
// first.
func (n *NotificationService) Since(after uint64) []Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Notification, 0, n.count)
	start := (n.next - n.count + n.size) % n.size
	for i := 0; i < n.count; i++ {
		item := n.buf[(start+i)%n.size]
		if item.Seq > after {
			out = append(out, item)
		}
	}
	return out
}
