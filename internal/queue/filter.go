package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/sla"
)

// Assignment scopes the queue by ownership.
type Assignment string

const (
	AssignmentAll        Assignment = "all"
	AssignmentMine       Assignment = "mine"
	AssignmentUnassigned Assignment = "unassigned"
)

// ParseAssignment maps query values onto an Assignment, defaulting to all.
func ParseAssignment(s string) (Assignment, error) {
	switch Assignment(strings.ToLower(strings.TrimSpace(s))) {
	case "", AssignmentAll:
		return AssignmentAll, nil
	case AssignmentMine:
		return AssignmentMine, nil
	case AssignmentUnassigned:
		return AssignmentUnassigned, nil
	}
	return "", fmt.Errorf("unknown assignment scope %q", s)
}

// Filter is a conjunction of predicates. Empty slices do not constrain.
type Filter struct {
	Urgencies  []sla.Urgency
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Tags       []string
	Assignment Assignment
	// Agent is the viewing agent, used by AssignmentMine.
	Agent string
}

// Match reports whether ticket passes every predicate at time now.
func (f Filter) Match(t *domain.Ticket, now time.Time) bool {
	if len(f.Urgencies) > 0 && !containsUrgency(f.Urgencies, sla.Classify(t.SLADeadline, now)) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, t.Category) {
		return false
	}
	for _, tag := range f.Tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	switch f.Assignment {
	case AssignmentMine:
		return f.Agent != "" && t.IsAssignedTo(f.Agent)
	case AssignmentUnassigned:
		return t.AssignedTo == nil
	}
	return true
}

func containsUrgency(values []sla.Urgency, v sla.Urgency) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsPriority(values []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsCategory(values []domain.TicketCategory, v domain.TicketCategory) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
