package domain

import "time"

// AgentStatus is the live presence of a support agent.
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentAway    AgentStatus = "away"
	AgentBusy    AgentStatus = "busy"
	AgentOffline AgentStatus = "offline"
)

// Agent models a support agent. The core only reads agents to validate
// assignment and collaboration targets.
type Agent struct {
	ID          string
	Name        string
	Status      AgentStatus
	TicketCount int
}

// Escalation tiers understood by the support backend.
const (
	TierOperator = "operator"
	TierAdmin    = "admin"
)

// LiveChat is a chat session that can be converted into a ticket.
type LiveChat struct {
	ID         string
	OdID       string
	Subject    string
	Language   string
	Category   TicketCategory
	Priority   TicketPriority
	AgentID    *string
	Transcript []Message
	StartedAt  time.Time
}
