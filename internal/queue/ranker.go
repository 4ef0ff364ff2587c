// Package queue produces the ordered work queue agents pick tickets from.
// Everything here is a pure projection over a ticket snapshot.
package queue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/sla"
)

// SortKey selects the queue ordering.
type SortKey string

const (
	SortBySLA      SortKey = "sla"
	SortByPriority SortKey = "priority"
	SortByCreated  SortKey = "created"
)

// ParseSortKey maps query values onto a SortKey, defaulting to sla.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortBySLA:
		return SortBySLA, nil
	case SortByPriority:
		return SortByPriority, nil
	case SortByCreated:
		return SortByCreated, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Rank returns the live tickets matching filter in the order given by key.
// Resolved and closed tickets are never included. The input is not modified.
func Rank(tickets []domain.Ticket, filter Filter, key SortKey, now time.Time) []domain.Ticket {
	ranked := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		if t.Status.IsTerminal() {
			continue
		}
		if !filter.Match(t, now) {
			continue
		}
		ranked = append(ranked, *t)
	}
	sort.SliceStable(ranked, less(ranked, key))
	return ranked
}

func less(ts []domain.Ticket, key SortKey) func(i, j int) bool {
	switch key {
	case SortByPriority:
		return func(i, j int) bool {
			a, b := &ts[i], &ts[j]
			if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
				return ra < rb
			}
			if !a.SLADeadline.Equal(b.SLADeadline) {
				return a.SLADeadline.Before(b.SLADeadline)
			}
			return a.ID < b.ID
		}
	case SortByCreated:
		return func(i, j int) bool {
			a, b := &ts[i], &ts[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	default:
		return func(i, j int) bool {
			a, b := &ts[i], &ts[j]
			if !a.SLADeadline.Equal(b.SLADeadline) {
				return a.SLADeadline.Before(b.SLADeadline)
			}
			return a.ID < b.ID
		}
	}
}

// Entry pairs a ranked ticket with its SLA classification.
type Entry struct {
	Ticket    domain.Ticket
	Urgency   sla.Urgency
	Remaining time.Duration
}

// Annotate attaches urgency to each ranked ticket.
func Annotate(ranked []domain.Ticket, now time.Time) []Entry {
	entries := make([]Entry, 0, len(ranked))
	for _, t := range ranked {
		entries = append(entries, Entry{
			Ticket:    t,
			Urgency:   sla.Classify(t.SLADeadline, now),
			Remaining: sla.Remaining(t.SLADeadline, now),
		})
	}
	return entries
}
