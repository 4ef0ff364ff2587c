package domain

import (
	"strconv"
	"strings"
	"time"
)

// HistoryKind tags the variant of a history entry.
type HistoryKind string

const (
	HistoryCreated           HistoryKind = "created"
	HistoryConverted         HistoryKind = "converted"
	HistoryAssigned          HistoryKind = "assigned"
	HistoryResolved          HistoryKind = "resolved"
	HistoryEscalated         HistoryKind = "escalated"
	HistoryTransferred       HistoryKind = "transferred"
	HistoryTagAdded          HistoryKind = "tag_added"
	HistoryTagRemoved        HistoryKind = "tag_removed"
	HistoryCollaboratorAdded HistoryKind = "collaborator_added"
	HistoryMerged            HistoryKind = "merged"
	HistoryWaiting           HistoryKind = "waiting"
	HistoryResumed           HistoryKind = "resumed"
	HistoryReopened          HistoryKind = "reopened"
	HistoryClosed            HistoryKind = "closed"
)

// HistoryEntry is an immutable audit trail entry. Only the payload fields
// belonging to Kind are populated.
type HistoryEntry struct {
	ID     string
	Kind   HistoryKind
	Actor  string
	At     time.Time
	Target string
	Reason string
	To     string
	Tag    string
	Agent  string
	From   []int64
}

// Action is the display label of the entry.
func (h HistoryEntry) Action() string {
	switch h.Kind {
	case HistoryCreated:
		return "Created"
	case HistoryConverted:
		return "Converted from chat"
	case HistoryAssigned:
		return "Assigned"
	case HistoryResolved:
		return "Resolved"
	case HistoryEscalated:
		return "Escalated"
	case HistoryTransferred:
		return "Transferred"
	case HistoryTagAdded:
		return "Tag added"
	case HistoryTagRemoved:
		return "Tag removed"
	case HistoryCollaboratorAdded:
		return "Collaborator added"
	case HistoryMerged:
		return "Merged"
	case HistoryWaiting:
		return "Waiting"
	case HistoryResumed:
		return "Resumed"
	case HistoryReopened:
		return "Reopened"
	case HistoryClosed:
		return "Closed"
	}
	return string(h.Kind)
}

// Detail renders the free-text detail shown in the audit trail.
func (h HistoryEntry) Detail() string {
	switch h.Kind {
	case HistoryAssigned, HistoryTransferred:
		return h.To
	case HistoryEscalated:
		return h.Target + ": " + h.Reason
	case HistoryTagAdded, HistoryTagRemoved:
		return h.Tag
	case HistoryCollaboratorAdded:
		return h.Agent
	case HistoryMerged:
		ids := make([]string, 0, len(h.From))
		for _, id := range h.From {
			ids = append(ids, "#"+strconv.FormatInt(id, 10))
		}
		return strings.Join(ids, ", ")
	case HistoryConverted:
		return h.Reason
	}
	return ""
}
