package agentapi

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

type attachmentDTO struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

type messageDTO struct {
	ID                string          `json:"id"`
	Sender            string          `json:"sender"`
	AuthorID          string          `json:"author_id"`
	Body              string          `json:"body"`
	Attachments       []attachmentDTO `json:"attachments,omitempty"`
	SuggestedResponse *string         `json:"suggested_response,omitempty"`
	IsInternal        bool            `json:"is_internal"`
	IsSystem          bool            `json:"is_system"`
	CreatedAt         time.Time       `json:"created_at"`
}

type historyDTO struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
	Target string    `json:"target,omitempty"`
	Reason string    `json:"reason,omitempty"`
	To     string    `json:"to,omitempty"`
	Tag    string    `json:"tag,omitempty"`
	Agent  string    `json:"agent,omitempty"`
	From   []int64   `json:"from,omitempty"`
}

type ticketDTO struct {
	ID            int64        `json:"id"`
	OdID          string       `json:"od_id"`
	Subject       string       `json:"subject"`
	Category      string       `json:"category"`
	Priority      string       `json:"priority"`
	Language      string       `json:"language"`
	Status        string       `json:"status"`
	AssignedTo    *string      `json:"assigned_to"`
	EscalatedTo   *string      `json:"escalated_to"`
	Collaborators []string     `json:"collaborators"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	SLADeadline   time.Time    `json:"sla_deadline"`
	WaitingSince  *time.Time   `json:"waiting_since,omitempty"`
	Tags          []string     `json:"tags"`
	MergedFrom    []int64      `json:"merged_from"`
	Rating        *int         `json:"rating,omitempty"`
	History       []historyDTO `json:"history,omitempty"`
	Messages      []messageDTO `json:"messages,omitempty"`
}

type ticketDetailDTO struct {
	Ticket   ticketDTO    `json:"ticket"`
	Messages []messageDTO `json:"messages"`
}

type ticketListDTO struct {
	Tickets []ticketDTO `json:"tickets"`
}

type agentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	TicketCount int    `json:"ticket_count"`
}

type agentListDTO struct {
	Agents []agentDTO `json:"agents"`
}

type updateRequest struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type escalateRequest struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

// toTicket converts the wire ticket. Messages flagged internal are split off
// into internal notes; every other message stays on the public thread.
func (t ticketDTO) toTicket(messages []messageDTO) *domain.Ticket {
	out := &domain.Ticket{
		ID:            t.ID,
		OdID:          t.OdID,
		Subject:       t.Subject,
		Category:      domain.TicketCategory(t.Category),
		Priority:      domain.TicketPriority(t.Priority),
		Language:      t.Language,
		Status:        domain.TicketStatus(t.Status),
		AssignedTo:    t.AssignedTo,
		EscalatedTo:   t.EscalatedTo,
		Collaborators: t.Collaborators,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		SLADeadline:   t.SLADeadline,
		WaitingSince:  t.WaitingSince,
		Tags:          t.Tags,
		MergedFrom:    t.MergedFrom,
		Rating:        t.Rating,
	}
	if messages == nil {
		messages = t.Messages
	}
	for _, m := range messages {
		if m.IsInternal {
			out.InternalNotes = append(out.InternalNotes, domain.InternalNote{
				ID:        m.ID,
				AuthorID:  m.AuthorID,
				Body:      m.Body,
				CreatedAt: m.CreatedAt,
			})
			continue
		}
		out.Messages = append(out.Messages, m.toMessage())
	}
	for _, h := range t.History {
		out.History = append(out.History, domain.HistoryEntry{
			ID:     h.ID,
			Kind:   domain.HistoryKind(h.Kind),
			Actor:  h.Actor,
			At:     h.At,
			Target: h.Target,
			Reason: h.Reason,
			To:     h.To,
			Tag:    h.Tag,
			Agent:  h.Agent,
			From:   h.From,
		})
	}
	return out
}

func (m messageDTO) toMessage() domain.Message {
	msg := domain.Message{
		ID:                m.ID,
		Sender:            domain.MessageSender(m.Sender),
		AuthorID:          m.AuthorID,
		Body:              m.Body,
		SuggestedResponse: m.SuggestedResponse,
		System:            m.IsSystem,
		CreatedAt:         m.CreatedAt,
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			Name:      a.Name,
			URL:       a.URL,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
		})
	}
	return msg
}

func (a agentDTO) toAgent() domain.Agent {
	return domain.Agent{
		ID:          a.ID,
		Name:        a.Name,
		Status:      domain.AgentStatus(a.Status),
		TicketCount: a.TicketCount,
	}
}
