package lifecycle

import (
	"strings"

	"github.com/spec-kit/support-console/internal/domain"
)

// RatingRequestText is the synthetic message sent when feedback is requested.
const RatingRequestText = "How would you rate the help you received? Reply with a score from 1 to 5."

// Assign makes agentID the primary assignee and starts work on an open ticket.
func Assign(agentID string) Mutation {
	agentID = strings.TrimSpace(agentID)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if agentID == "" {
			return false, ErrTargetRequired
		}
		if !knownAgent(env, agentID) {
			return false, ErrUnknownAgent
		}
		if t.IsAssignedTo(agentID) {
			return false, nil
		}
		if t.Status != domain.TicketStatusOpen && t.Status != domain.TicketStatusInProgress {
			return false, ErrInvalidTransition
		}
		t.AssignedTo = domain.StringPtr(agentID)
		t.Status = domain.TicketStatusInProgress
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryAssigned, To: agentID})
		return true, nil
	}
}

// Resolve marks the ticket resolved. Resolving a terminal ticket is a no-op.
func Resolve() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if t.Status.IsTerminal() {
			return false, nil
		}
		t.Status = domain.TicketStatusResolved
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryResolved})
		return true, nil
	}
}

// Escalate hands the ticket to a higher tier. The assignee is kept.
func Escalate(target, reason string) Mutation {
	target = strings.TrimSpace(target)
	reason = strings.TrimSpace(reason)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if reason == "" {
			return false, ErrReasonRequired
		}
		if target == "" {
			return false, ErrTargetRequired
		}
		if t.Status.IsTerminal() {
			return false, ErrInvalidTransition
		}
		if t.Status == domain.TicketStatusEscalated && t.EscalatedTo != nil && *t.EscalatedTo == target {
			return false, nil
		}
		t.Status = domain.TicketStatusEscalated
		t.EscalatedTo = domain.StringPtr(target)
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryEscalated, Target: target, Reason: reason})
		return true, nil
	}
}

// Transfer reassigns the ticket to another known agent.
func Transfer(agentID string) Mutation {
	agentID = strings.TrimSpace(agentID)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if agentID == "" {
			return false, ErrTargetRequired
		}
		if agentID == env.Actor {
			return false, ErrSelfTransfer
		}
		if !knownAgent(env, agentID) {
			return false, ErrUnknownAgent
		}
		if t.Status.IsTerminal() {
			return false, ErrInvalidTransition
		}
		if t.IsAssignedTo(agentID) {
			return false, nil
		}
		t.AssignedTo = domain.StringPtr(agentID)
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryTransferred, To: agentID})
		return true, nil
	}
}

// Tag adds a label. Adding a present tag is a no-op.
func Tag(tag string) Mutation {
	tag = strings.TrimSpace(tag)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if tag == "" {
			return false, ErrEmptyTag
		}
		if t.HasTag(tag) {
			return false, nil
		}
		t.Tags = append(t.Tags, tag)
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryTagAdded, Tag: tag})
		return true, nil
	}
}

// Untag removes a label. Removing an absent tag is a no-op.
func Untag(tag string) Mutation {
	tag = strings.TrimSpace(tag)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if tag == "" {
			return false, ErrEmptyTag
		}
		if !t.HasTag(tag) {
			return false, nil
		}
		kept := t.Tags[:0]
		for _, existing := range t.Tags {
			if existing != tag {
				kept = append(kept, existing)
			}
		}
		t.Tags = kept
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryTagRemoved, Tag: tag})
		return true, nil
	}
}

// AddCollaborator grants an agent participation on the ticket.
func AddCollaborator(agentID string) Mutation {
	agentID = strings.TrimSpace(agentID)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if agentID == "" {
			return false, ErrTargetRequired
		}
		if !knownAgent(env, agentID) {
			return false, ErrUnknownAgent
		}
		if t.HasCollaborator(agentID) {
			return false, ErrAlreadyCollaborator
		}
		t.Collaborators = append(t.Collaborators, agentID)
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryCollaboratorAdded, Agent: agentID})
		return true, nil
	}
}

// RequestRating asks the end user for feedback without changing status.
func RequestRating() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if t.Status == domain.TicketStatusClosed {
			return false, ErrInvalidTransition
		}
		t.Messages = append(t.Messages, domain.Message{
			ID:        env.NewID(),
			Sender:    domain.SenderSupport,
			AuthorID:  env.Actor,
			Body:      RatingRequestText,
			System:    true,
			CreatedAt: env.Now,
		})
		return true, nil
	}
}

// Rate stores the end user's 1-5 score.
func Rate(score int) Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if score < 1 || score > 5 {
			return false, ErrInvalidRating
		}
		if t.Rating != nil && *t.Rating == score {
			return false, nil
		}
		v := score
		t.Rating = &v
		return true, nil
	}
}

// Reply appends a public support message.
func Reply(text string) Mutation {
	text = strings.TrimSpace(text)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if text == "" {
			return false, ErrEmptyBody
		}
		if t.Status == domain.TicketStatusClosed {
			return false, ErrInvalidTransition
		}
		t.Messages = append(t.Messages, domain.Message{
			ID:        env.NewID(),
			Sender:    domain.SenderSupport,
			AuthorID:  env.Actor,
			Body:      text,
			CreatedAt: env.Now,
		})
		return true, nil
	}
}

// AddInternalNote appends an agent-only note.
func AddInternalNote(text string) Mutation {
	text = strings.TrimSpace(text)
	return func(t *domain.Ticket, env Env) (bool, error) {
		if text == "" {
			return false, ErrEmptyBody
		}
		t.InternalNotes = append(t.InternalNotes, domain.InternalNote{
			ID:        env.NewID(),
			AuthorID:  env.Actor,
			Body:      text,
			CreatedAt: env.Now,
		})
		return true, nil
	}
}

// SetWaiting parks an in-progress ticket until the end user answers.
func SetWaiting() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if t.Status == domain.TicketStatusWaiting {
			return false, nil
		}
		if t.Status != domain.TicketStatusInProgress {
			return false, ErrInvalidTransition
		}
		now := env.Now
		t.Status = domain.TicketStatusWaiting
		t.WaitingSince = &now
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryWaiting})
		return true, nil
	}
}

// Resume returns a waiting ticket to in_progress.
func Resume() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if t.Status == domain.TicketStatusInProgress {
			return false, nil
		}
		if t.Status != domain.TicketStatusWaiting {
			return false, ErrInvalidTransition
		}
		t.Status = domain.TicketStatusInProgress
		t.WaitingSince = nil
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryResumed})
		return true, nil
	}
}

// Reopen returns a resolved ticket to the live queue.
func Reopen() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		switch t.Status {
		case domain.TicketStatusResolved:
		case domain.TicketStatusClosed:
			return false, ErrInvalidTransition
		default:
			return false, nil
		}
		next := domain.TicketStatusOpen
		if t.AssignedTo != nil {
			next = domain.TicketStatusInProgress
		}
		if !CanTransition(t.Status, next) {
			return false, ErrInvalidTransition
		}
		t.Status = next
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryReopened})
		return true, nil
	}
}

// Close finalises the ticket. Closing a closed ticket is a no-op.
func Close() Mutation {
	return func(t *domain.Ticket, env Env) (bool, error) {
		if t.Status == domain.TicketStatusClosed {
			return false, nil
		}
		if !CanTransition(t.Status, domain.TicketStatusClosed) {
			return false, ErrInvalidTransition
		}
		t.Status = domain.TicketStatusClosed
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryClosed})
		return true, nil
	}
}
