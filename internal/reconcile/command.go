package reconcile

import (
	"context"
	"strconv"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/lifecycle"
)

// Command is one agent intent: a local mutation and, when the backend
// supports it, the equivalent remote call. A nil Call keeps the command local.
type Command struct {
	Op       string
	TicketID int64
	// Key distinguishes two commands of the same op on the same ticket
	// version, for example two different replies.
	Key    string
	Done   string
	Mutate lifecycle.Mutation
	Call   RemoteCall
}

func status(s domain.TicketStatus) *domain.TicketStatus { return &s }

func updateStatus(id int64, s domain.TicketStatus) RemoteCall {
	return func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
		return r.UpdateTicket(ctx, id, TicketUpdate{Status: status(s)})
	}
}

// Assign assigns agentID to the ticket.
func Assign(id int64, agentID string) Command {
	return Command{
		Op: "assign", TicketID: id, Key: agentID,
		Done:   "Ticket assigned",
		Mutate: lifecycle.Assign(agentID),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return r.UpdateTicket(ctx, id, TicketUpdate{
				Status:     status(domain.TicketStatusInProgress),
				AssignedTo: domain.StringPtr(agentID),
			})
		},
	}
}

// Resolve resolves the ticket.
func Resolve(id int64) Command {
	return Command{
		Op: "resolve", TicketID: id,
		Done:   "Ticket resolved",
		Mutate: lifecycle.Resolve(),
		Call:   updateStatus(id, domain.TicketStatusResolved),
	}
}

// Escalate escalates the ticket to target.
func Escalate(id int64, target, reason string) Command {
	return Command{
		Op: "escalate", TicketID: id, Key: target,
		Done:   "Ticket escalated to " + target,
		Mutate: lifecycle.Escalate(target, reason),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return ack(r.EscalateTicket(ctx, id, target, reason))
		},
	}
}

// Transfer hands the ticket to another agent.
func Transfer(id int64, agentID string) Command {
	return Command{
		Op: "transfer", TicketID: id, Key: agentID,
		Done:   "Ticket transferred",
		Mutate: lifecycle.Transfer(agentID),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return r.UpdateTicket(ctx, id, TicketUpdate{AssignedTo: domain.StringPtr(agentID)})
		},
	}
}

// Tag adds a tag.
func Tag(id int64, tag string) Command {
	return Command{
		Op: "tag", TicketID: id, Key: tag,
		Done:   "Tag added",
		Mutate: lifecycle.Tag(tag),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return r.AddTicketTag(ctx, id, tag)
		},
	}
}

// Untag removes a tag.
func Untag(id int64, tag string) Command {
	return Command{
		Op: "untag", TicketID: id, Key: tag,
		Done:   "Tag removed",
		Mutate: lifecycle.Untag(tag),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return r.RemoveTicketTag(ctx, id, tag)
		},
	}
}

// AddCollaborator adds a collaborating agent. The backend has no
// collaborator endpoint so the change stays local.
func AddCollaborator(id int64, agentID string) Command {
	return Command{
		Op: "collaborator", TicketID: id, Key: agentID,
		Done:   "Collaborator added",
		Mutate: lifecycle.AddCollaborator(agentID),
	}
}

// RequestRating asks the end user for feedback.
func RequestRating(id int64) Command {
	return Command{
		Op: "rating_request", TicketID: id,
		Done:   "Rating requested",
		Mutate: lifecycle.RequestRating(),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return ack(r.RequestTicketRating(ctx, id))
		},
	}
}

// Rate records the end user's score.
func Rate(id int64, score int) Command {
	return Command{
		Op: "rate", TicketID: id, Key: strconv.Itoa(score),
		Done:   "Rating saved",
		Mutate: lifecycle.Rate(score),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return r.UpdateTicket(ctx, id, TicketUpdate{Rating: &score})
		},
	}
}

// Reply posts a public reply.
func Reply(id int64, text string) Command {
	return Command{
		Op: "reply", TicketID: id, Key: text,
		Done:   "Reply sent",
		Mutate: lifecycle.Reply(text),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return ack(r.ReplyToTicket(ctx, id, text))
		},
	}
}

// AddInternalNote posts an agent-only note.
func AddInternalNote(id int64, text string) Command {
	return Command{
		Op: "note", TicketID: id, Key: text,
		Done:   "Internal note added",
		Mutate: lifecycle.AddInternalNote(text),
		Call: func(ctx context.Context, r Remote, _ *domain.Ticket) (*domain.Ticket, error) {
			return ack(r.AddInternalNote(ctx, id, text))
		},
	}
}

// SetWaiting parks the ticket until the end user answers.
func SetWaiting(id int64) Command {
	return Command{
		Op: "waiting", TicketID: id,
		Done:   "Ticket set to waiting",
		Mutate: lifecycle.SetWaiting(),
		Call:   updateStatus(id, domain.TicketStatusWaiting),
	}
}

// Resume returns a waiting ticket to work.
func Resume(id int64) Command {
	return Command{
		Op: "resume", TicketID: id,
		Done:   "Ticket resumed",
		Mutate: lifecycle.Resume(),
		Call:   updateStatus(id, domain.TicketStatusInProgress),
	}
}

// Reopen reopens a resolved ticket. The backend receives the status the
// local mutation settled on.
func Reopen(id int64) Command {
	return Command{
		Op: "reopen", TicketID: id,
		Done:   "Ticket reopened",
		Mutate: lifecycle.Reopen(),
		Call: func(ctx context.Context, r Remote, next *domain.Ticket) (*domain.Ticket, error) {
			return r.UpdateTicket(ctx, id, TicketUpdate{Status: status(next.Status)})
		},
	}
}

// CloseTicket closes the ticket for good.
func CloseTicket(id int64) Command {
	return Command{
		Op: "close", TicketID: id,
		Done:   "Ticket closed",
		Mutate: lifecycle.Close(),
		Call:   updateStatus(id, domain.TicketStatusClosed),
	}
}
