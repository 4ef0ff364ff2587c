package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting,
		TicketStatusEscalated, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// IsTerminal reports whether the ticket has left the live queue.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityUrgent TicketPriority = "urgent"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityLow    TicketPriority = "low"
)

// Rank orders priorities, lower is more urgent. Unknown values sort last.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityUrgent:
		return 0
	case TicketPriorityHigh:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityLow:
		return 3
	}
	return 4
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	return p.Rank() < 4
}

// SLAWindow is the resolution window granted at creation.
func (p TicketPriority) SLAWindow() time.Duration {
	switch p {
	case TicketPriorityUrgent:
		return time.Hour
	case TicketPriorityHigh:
		return 4 * time.Hour
	case TicketPriorityLow:
		return 24 * time.Hour
	default:
		return 8 * time.Hour
	}
}

// TicketCategory classifies what the end user needs help with.
type TicketCategory string

const (
	CategoryWithdrawal   TicketCategory = "withdrawal"
	CategoryDeposit      TicketCategory = "deposit"
	CategoryAccount      TicketCategory = "account"
	CategoryTrading      TicketCategory = "trading"
	CategoryTechnical    TicketCategory = "technical"
	CategoryVerification TicketCategory = "verification"
	CategoryBonus        TicketCategory = "bonus"
	CategoryOther        TicketCategory = "other"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryWithdrawal, CategoryDeposit, CategoryAccount, CategoryTrading,
		CategoryTechnical, CategoryVerification, CategoryBonus, CategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            int64
	OdID          string
	Subject       string
	Category      TicketCategory
	Priority      TicketPriority
	Language      string
	Status        TicketStatus
	AssignedTo    *string
	EscalatedTo   *string
	Collaborators []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SLADeadline   time.Time
	WaitingSince  *time.Time
	Messages      []Message
	InternalNotes []InternalNote
	History       []HistoryEntry
	MergedFrom    []int64
	Tags          []string
	Rating        *int
}

// Code is the external-facing ticket reference. Provisional tickets are
// labelled apart from backend ones.
func (t *Ticket) Code() string {
	if t.IsProvisional() {
		return fmt.Sprintf("NEW-%06d", -t.ID)
	}
	return fmt.Sprintf("TCK-%06d", t.ID)
}

// IsAssignedTo reports whether agentID is the primary assignee.
func (t *Ticket) IsAssignedTo(agentID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == agentID
}

// HasTag reports whether tag is on the ticket.
func (t *Ticket) HasTag(tag string) bool {
	return containsString(t.Tags, tag)
}

// HasCollaborator reports whether agentID collaborates on the ticket.
func (t *Ticket) HasCollaborator(agentID string) bool {
	return containsString(t.Collaborators, agentID)
}

// Clone returns a deep copy so callers never share slices with the store.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	c.AssignedTo = cloneString(t.AssignedTo)
	c.EscalatedTo = cloneString(t.EscalatedTo)
	c.Rating = cloneInt(t.Rating)
	if t.WaitingSince != nil {
		ws := *t.WaitingSince
		c.WaitingSince = &ws
	}
	c.Collaborators = append([]string(nil), t.Collaborators...)
	c.Tags = append([]string(nil), t.Tags...)
	c.MergedFrom = append([]int64(nil), t.MergedFrom...)
	c.InternalNotes = append([]InternalNote(nil), t.InternalNotes...)
	c.History = append([]HistoryEntry(nil), t.History...)
	for i := range c.History {
		c.History[i].From = append([]int64(nil), t.History[i].From...)
	}
	c.Messages = make([]Message, len(t.Messages))
	for i, msg := range t.Messages {
		c.Messages[i] = msg.clone()
	}
	if t.Messages == nil {
		c.Messages = nil
	}
	return &c
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
