package lifecycle

import (
	"sort"
	"strings"

	"github.com/spec-kit/support-console/internal/domain"
)

// CreateInput describes a ticket opened directly by an agent.
type CreateInput struct {
	OdID     string
	Subject  string
	Body     string
	Category domain.TicketCategory
	Priority domain.TicketPriority
	Language string
	Tags     []string
}

// Create builds a new open ticket. The SLA deadline is derived from the
// priority once, here, and never changes afterwards.
func (e *Engine) Create(id int64, actor string, input CreateInput) (*domain.Ticket, error) {
	input.OdID = strings.TrimSpace(input.OdID)
	if input.OdID == "" || strings.TrimSpace(input.Subject) == "" {
		return nil, ErrInvalidInput
	}
	env := e.Env(actor)
	t := newTicket(id, env, input.OdID, input.Category, input.Priority, input.Language)
	t.Subject = strings.TrimSpace(input.Subject)
	if body := strings.TrimSpace(input.Body); body != "" {
		t.Messages = append(t.Messages, domain.Message{
			ID:        env.NewID(),
			Sender:    domain.SenderUser,
			AuthorID:  input.OdID,
			Body:      body,
			CreatedAt: env.Now,
		})
	}
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" && !t.HasTag(tag) {
			t.Tags = append(t.Tags, tag)
		}
	}
	record(t, env, domain.HistoryEntry{Kind: domain.HistoryCreated})
	return t, nil
}

// ConvertChat turns a live chat into a ticket carrying its transcript. The
// chat's agent, when known, becomes the assignee.
func (e *Engine) ConvertChat(id int64, actor string, chat domain.LiveChat) (*domain.Ticket, error) {
	if strings.TrimSpace(chat.OdID) == "" {
		return nil, ErrInvalidInput
	}
	env := e.Env(actor)
	t := newTicket(id, env, chat.OdID, chat.Category, chat.Priority, chat.Language)
	t.Subject = strings.TrimSpace(chat.Subject)
	if t.Subject == "" {
		t.Subject = "Live chat " + chat.ID
	}
	t.Messages = append(t.Messages, chat.Transcript...)
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].CreatedAt.Before(t.Messages[j].CreatedAt)
	})
	record(t, env, domain.HistoryEntry{Kind: domain.HistoryConverted, Reason: chat.ID})
	if chat.AgentID != nil && knownAgent(env, *chat.AgentID) {
		t.AssignedTo = domain.StringPtr(*chat.AgentID)
		t.Status = domain.TicketStatusInProgress
		record(t, env, domain.HistoryEntry{Kind: domain.HistoryAssigned, To: *chat.AgentID})
	}
	return t, nil
}

func newTicket(id int64, env Env, odID string, category domain.TicketCategory, priority domain.TicketPriority, language string) *domain.Ticket {
	if !category.Valid() {
		category = domain.CategoryOther
	}
	if !priority.Valid() {
		priority = domain.TicketPriorityMedium
	}
	if language == "" {
		language = "en"
	}
	return &domain.Ticket{
		ID:          id,
		OdID:        odID,
		Category:    category,
		Priority:    priority,
		Language:    language,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
		SLADeadline: env.Now.Add(priority.SLAWindow()),
	}
}
