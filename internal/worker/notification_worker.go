package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/service"
)

// RefreshNotifier turns refresh results into agent notifications: one warning
// when the backend stops answering and one notice when it recovers. Results
// are forwarded to next.
type RefreshNotifier struct {
	dispatcher events.Dispatcher
	clock      clock.Clock
	next       PollRecorder

	mu      sync.Mutex
	failing bool
}

// StartNotificationWorker registers the notification feed on the dispatcher
// and returns the recorder the poller should report to.
func StartNotificationWorker(notifications *service.NotificationService, dispatcher events.Dispatcher, clk clock.Clock, next PollRecorder) *RefreshNotifier {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &RefreshNotifier{dispatcher: dispatcher, clock: clk, next: next}
}

// ObservePoll implements PollRecorder.
func (n *RefreshNotifier) ObservePoll(result string, stored int) {
	if n.next != nil {
		n.next.ObservePoll(result, stored)
	}

	n.mu.Lock()
	var level events.NotificationLevel
	var message string
	switch {
	case result == "error" && !n.failing:
		n.failing = true
		level, message = events.LevelWarning, "Support backend unreachable; showing cached tickets"
	case result == "ok" && n.failing:
		n.failing = false
		level, message = events.LevelInfo, "Support backend reachable again"
	}
	n.mu.Unlock()

	if message == "" || n.dispatcher == nil {
		return
	}
	_ = n.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventNotification,
		Actor:     "system",
		Timestamp: n.clock.Now(),
		Payload:   events.NotificationPayload{Level: level, Message: message},
	})
}
