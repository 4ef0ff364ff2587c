package queue

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/sla"
)

// Summary is the queue header: live ticket counts per urgency bucket.
type Summary struct {
	Total      int
	Unassigned int
	Escalated  int
	ByUrgency  map[sla.Urgency]int
}

// Summarize counts live tickets at time now.
func Summarize(tickets []domain.Ticket, now time.Time) Summary {
	s := Summary{ByUrgency: map[sla.Urgency]int{
		sla.Expired:  0,
		sla.Critical: 0,
		sla.Warning:  0,
		sla.OnTime:   0,
	}}
	for i := range tickets {
		t := &tickets[i]
		if t.Status.IsTerminal() {
			continue
		}
		s.Total++
		if t.AssignedTo == nil {
			s.Unassigned++
		}
		if t.Status == domain.TicketStatusEscalated {
			s.Escalated++
		}
		s.ByUrgency[sla.Classify(t.SLADeadline, now)]++
	}
	return s
}
