package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/queue"
	"github.com/spec-kit/support-console/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	OdID     string   `json:"od_id" validate:"notblank"`
	Subject  string   `json:"subject" validate:"notblank,max=200"`
	Body     string   `json:"body" validate:"max=10000"`
	Category string   `json:"category" validate:"omitempty,category"`
	Priority string   `json:"priority" validate:"omitempty,priority"`
	Language string   `json:"language" validate:"omitempty,len=2"`
	Tags     []string `json:"tags" validate:"max=20,dive,notblank"`
}

// ConvertChatRequest payload.
type ConvertChatRequest struct {
	ChatID     string           `json:"chat_id" validate:"required"`
	OdID       string           `json:"od_id" validate:"notblank"`
	Subject    string           `json:"subject"`
	Category   string           `json:"category" validate:"omitempty,category"`
	Priority   string           `json:"priority" validate:"omitempty,priority"`
	Language   string           `json:"language" validate:"omitempty,len=2"`
	AgentID    *string          `json:"agent_id"`
	Transcript []MessageRequest `json:"transcript" validate:"dive"`
	StartedAt  time.Time        `json:"started_at"`
}

// MessageRequest is one transcript line.
type MessageRequest struct {
	Sender    string    `json:"sender" validate:"oneof=user support"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body" validate:"notblank"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// AssignRequest payload.
type AssignRequest struct {
	AgentID string `json:"agent_id" validate:"notblank"`
}

// EscalateRequest payload. Reason is checked by the lifecycle rules so a
// blank reason reports the same error on every path.
type EscalateRequest struct {
	Target string `json:"target" validate:"oneof=operator admin"`
	Reason string `json:"reason"`
}

// TagRequest payload.
type TagRequest struct {
	Tag string `json:"tag" validate:"notblank,max=64"`
}

// TextRequest is the payload of replies and notes.
type TextRequest struct {
	Text string `json:"text" validate:"notblank,max=10000"`
}

// MergeRequest payload.
type MergeRequest struct {
	SourceID int64 `json:"source_id" validate:"required"`
}

// RateRequest payload.
type RateRequest struct {
	Score int `json:"score" validate:"min=1,max=5"`
}

// DraftRequest payload.
type DraftRequest struct {
	Text string `json:"text" validate:"max=10000"`
}

// BulkAssignRequest payload.
type BulkAssignRequest struct {
	IDs     []int64 `json:"ids" validate:"required,min=1,dive,ne=0"`
	AgentID string  `json:"agent_id" validate:"notblank"`
}

// BulkEscalateRequest payload.
type BulkEscalateRequest struct {
	IDs    []int64 `json:"ids" validate:"required,min=1,dive,ne=0"`
	Target string  `json:"target" validate:"oneof=operator admin"`
	Reason string  `json:"reason"`
}

// QueueItem is one ranked queue row.
type QueueItem struct {
	ID               int64                 `json:"id"`
	Code             string                `json:"code"`
	OdID             string                `json:"od_id"`
	Subject          string                `json:"subject"`
	Category         domain.TicketCategory `json:"category"`
	Priority         domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus   `json:"status"`
	AssignedTo       *string               `json:"assigned_to"`
	EscalatedTo      *string               `json:"escalated_to"`
	Tags             []string              `json:"tags"`
	SLADeadline      time.Time             `json:"sla_deadline"`
	Urgency          string                `json:"urgency"`
	RemainingSeconds int64                 `json:"remaining_seconds"`
	Local            bool                  `json:"local"`
	CreatedAt        time.Time             `json:"created_at"`
}

// QueueSummary response.
type QueueSummary struct {
	Total      int            `json:"total"`
	Unassigned int            `json:"unassigned"`
	Escalated  int            `json:"escalated"`
	ByUrgency  map[string]int `json:"by_urgency"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID                string    `json:"id"`
	Sender            string    `json:"sender"`
	AuthorID          string    `json:"author_id"`
	Body              string    `json:"body"`
	SuggestedResponse *string   `json:"suggested_response,omitempty"`
	System            bool      `json:"system"`
	Attachments       []string  `json:"attachments,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NoteResponse represents an internal note.
type NoteResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse represents an audit entry.
type HistoryResponse struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	QueueItem
	Language      string            `json:"language"`
	Collaborators []string          `json:"collaborators"`
	UpdatedAt     time.Time         `json:"updated_at"`
	WaitingSince  *time.Time        `json:"waiting_since,omitempty"`
	MergedFrom    []int64           `json:"merged_from"`
	Rating        *int              `json:"rating,omitempty"`
	Messages      []MessageResponse `json:"messages"`
	InternalNotes []NoteResponse    `json:"internal_notes"`
	History       []HistoryResponse `json:"history"`
	Draft         string            `json:"draft,omitempty"`
}

// CommandResponse reports the result of a ticket command.
type CommandResponse struct {
	Outcome string                `json:"outcome"`
	Ticket  *TicketDetailResponse `json:"ticket,omitempty"`
}

// BulkResponse reports per-ticket results.
type BulkResponse struct {
	Outcomes map[int64]string `json:"outcomes"`
	Errors   map[int64]string `json:"errors"`
	Skipped  []int64          `json:"skipped"`
}

// NewQueueItem builds a queue row.
func NewQueueItem(e queue.Entry, local bool) QueueItem {
	t := e.Ticket
	return QueueItem{
		ID:               t.ID,
		Code:             t.Code(),
		OdID:             t.OdID,
		Subject:          t.Subject,
		Category:         t.Category,
		Priority:         t.Priority,
		Status:           t.Status,
		AssignedTo:       t.AssignedTo,
		EscalatedTo:      t.EscalatedTo,
		Tags:             nonNil(t.Tags),
		SLADeadline:      t.SLADeadline,
		Urgency:          e.Urgency.String(),
		RemainingSeconds: int64(e.Remaining / time.Second),
		Local:            local,
		CreatedAt:        t.CreatedAt,
	}
}

// NewQueueSummary converts a queue summary.
func NewQueueSummary(s queue.Summary) QueueSummary {
	by := make(map[string]int, len(s.ByUrgency))
	for u, n := range s.ByUrgency {
		by[u.String()] = n
	}
	return QueueSummary{Total: s.Total, Unassigned: s.Unassigned, Escalated: s.Escalated, ByUrgency: by}
}

// NewTicketDetail builds the full ticket view at time now.
func NewTicketDetail(t *domain.Ticket, now time.Time, local bool, draft string) *TicketDetailResponse {
	entry := queue.Entry{Ticket: *t, Urgency: sla.Classify(t.SLADeadline, now), Remaining: sla.Remaining(t.SLADeadline, now)}
	resp := &TicketDetailResponse{
		QueueItem:     NewQueueItem(entry, local),
		Language:      t.Language,
		Collaborators: nonNil(t.Collaborators),
		UpdatedAt:     t.UpdatedAt,
		WaitingSince:  t.WaitingSince,
		MergedFrom:    t.MergedFrom,
		Rating:        t.Rating,
		Messages:      make([]MessageResponse, 0, len(t.Messages)),
		InternalNotes: make([]NoteResponse, 0, len(t.InternalNotes)),
		History:       make([]HistoryResponse, 0, len(t.History)),
		Draft:         draft,
	}
	if resp.MergedFrom == nil {
		resp.MergedFrom = []int64{}
	}
	for _, m := range t.Messages {
		msg := MessageResponse{
			ID:                m.ID,
			Sender:            string(m.Sender),
			AuthorID:          m.AuthorID,
			Body:              m.Body,
			SuggestedResponse: m.SuggestedResponse,
			System:            m.System,
			CreatedAt:         m.CreatedAt,
		}
		for _, a := range m.Attachments {
			msg.Attachments = append(msg.Attachments, a.URL)
		}
		resp.Messages = append(resp.Messages, msg)
	}
	for _, n := range t.InternalNotes {
		resp.InternalNotes = append(resp.InternalNotes, NoteResponse{ID: n.ID, AuthorID: n.AuthorID, Body: n.Body, CreatedAt: n.CreatedAt})
	}
	for _, h := range t.History {
		resp.History = append(resp.History, HistoryResponse{
			ID:     h.ID,
			Kind:   string(h.Kind),
			Action: h.Action(),
			Detail: h.Detail(),
			Actor:  h.Actor,
			At:     h.At,
		})
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
