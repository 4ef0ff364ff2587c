package events

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketChanged EventType = "ticket_changed"
	EventTicketRemoved EventType = "ticket_removed"
	EventNotification  EventType = "notification"
)

// Event represents a domain event emitted by the reconciler and workers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketChangedPayload carries the ticket as it is now presented.
type TicketChangedPayload struct {
	Op     string         `json:"op"`
	Local  bool           `json:"local"`
	Ticket *domain.Ticket `json:"ticket"`
}

// TicketRemovedPayload is emitted when a ticket leaves the active store.
type TicketRemovedPayload struct {
	MergedInto int64 `json:"merged_into,omitempty"`
}

// NotificationLevel grades operator notifications.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
)

// NotificationPayload is a non-blocking message shown to the agent.
type NotificationPayload struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
