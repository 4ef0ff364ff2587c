package lifecycle

import "github.com/spec-kit/support-console/internal/domain"

// escalated -> resolved and in_progress <-> waiting stay unrestricted.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusEscalated, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusWaiting, domain.TicketStatusEscalated, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaiting:    {domain.TicketStatusInProgress, domain.TicketStatusEscalated, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusEscalated:  {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

// CanTransition reports whether a ticket may move from current to next.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
