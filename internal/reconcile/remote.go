package reconcile

import (
	"context"

	"github.com/spec-kit/support-console/internal/domain"
)

// TicketQuery narrows GetTickets. Zero fields are not sent.
type TicketQuery struct {
	Status   domain.TicketStatus
	Priority domain.TicketPriority
	Category domain.TicketCategory
}

// TicketUpdate is a partial ticket update. Nil fields are left untouched.
type TicketUpdate struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	Rating     *int
}

// Remote is the support-agent backend. Calls that only acknowledge return no
// ticket; the reconciler re-fetches the canonical copy instead.
type Remote interface {
	GetTickets(ctx context.Context, query TicketQuery) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error)
	ReplyToTicket(ctx context.Context, id int64, text string) error
	AddInternalNote(ctx context.Context, id int64, text string) error
	EscalateTicket(ctx context.Context, id int64, target, reason string) error
	AddTicketTag(ctx context.Context, id int64, tag string) (*domain.Ticket, error)
	RemoveTicketTag(ctx context.Context, id int64, tag string) (*domain.Ticket, error)
	RequestTicketRating(ctx context.Context, id int64) error
	GetAgents(ctx context.Context) ([]domain.Agent, error)
}

// RemoteCall performs the backend side of a command. next is the locally
// mutated ticket. A nil ticket with a nil error means the backend acknowledged
// without returning the ticket.
type RemoteCall func(ctx context.Context, remote Remote, next *domain.Ticket) (*domain.Ticket, error)

func ack(err error) (*domain.Ticket, error) {
	return nil, err
}
