package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/domain"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type agentDir map[string]domain.Agent

func (d agentDir) Agent(id string) (domain.Agent, bool) {
	a, ok := d[id]
	return a, ok
}

func newTestEngine() (*Engine, *clock.Fake) {
	clk := clock.NewFake(start)
	seq := 0
	return NewEngine(Dependencies{
		Clock: clk,
		Agents: agentDir{
			"agent-1": {ID: "agent-1", Name: "Ada"},
			"agent-2": {ID: "agent-2", Name: "Bo"},
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}), clk
}

func openTicket(id int64) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		OdID:        "OD-000042",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		CreatedAt:   start.Add(-time.Hour),
		UpdatedAt:   start.Add(-time.Hour),
		SLADeadline: start.Add(30 * time.Minute),
	}
}

func apply(t *testing.T, e *Engine, tk *domain.Ticket, actor string, m Mutation) *domain.Ticket {
	t.Helper()
	next, changed, err := e.Apply(tk, actor, m)
	require.NoError(t, err)
	require.True(t, changed)
	return next
}

func TestAssign(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Assign("agent-1"))

	assert.Equal(t, domain.TicketStatusInProgress, tk.Status)
	require.NotNil(t, tk.AssignedTo)
	assert.Equal(t, "agent-1", *tk.AssignedTo)
	require.Len(t, tk.History, 1)
	assert.Equal(t, domain.HistoryAssigned, tk.History[0].Kind)
	assert.Equal(t, "agent-1", tk.History[0].Actor)
	assert.Equal(t, start, tk.UpdatedAt)
}

func TestAssignSameAgentTwiceRecordsOnce(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Assign("agent-1"))

	again, changed, err := e.Apply(tk, "agent-1", Assign("agent-1"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, again)

	assigned := 0
	for _, h := range tk.History {
		if h.Kind == domain.HistoryAssigned {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestAssignGuards(t *testing.T) {
	e, _ := newTestEngine()

	_, _, err := e.Apply(openTicket(1), "agent-1", Assign("ghost"))
	assert.ErrorIs(t, err, ErrUnknownAgent)

	_, _, err = e.Apply(openTicket(1), "agent-1", Assign(" "))
	assert.ErrorIs(t, err, ErrTargetRequired)

	waiting := openTicket(2)
	waiting.Status = domain.TicketStatusWaiting
	_, _, err = e.Apply(waiting, "agent-1", Assign("agent-1"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolve(t *testing.T) {
	e, clk := newTestEngine()
	clk.Advance(5 * time.Minute)
	tk := apply(t, e, openTicket(1), "agent-1", Resolve())
	assert.Equal(t, domain.TicketStatusResolved, tk.Status)
	assert.Equal(t, start.Add(5*time.Minute), tk.UpdatedAt)
	require.Len(t, tk.History, 1)
	assert.Equal(t, domain.HistoryResolved, tk.History[0].Kind)

	_, changed, err := e.Apply(tk, "agent-1", Resolve())
	require.NoError(t, err)
	assert.False(t, changed, "resolving a resolved ticket is a no-op")
}

func TestResolveEscalatedDirectly(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Escalate(domain.TierOperator, "chargeback"))
	tk = apply(t, e, tk, "agent-1", Resolve())
	assert.Equal(t, domain.TicketStatusResolved, tk.Status)
}

func TestEscalate(t *testing.T) {
	e, _ := newTestEngine()
	tk := openTicket(1003)
	tk.AssignedTo = domain.StringPtr("agent-1")
	tk.Status = domain.TicketStatusInProgress

	next := apply(t, e, tk, "agent-1", Escalate("operator", "needs legal review"))
	assert.Equal(t, domain.TicketStatusEscalated, next.Status)
	require.NotNil(t, next.EscalatedTo)
	assert.Equal(t, "operator", *next.EscalatedTo)
	assert.Equal(t, "agent-1", *next.AssignedTo, "escalation keeps the assignee")
	require.Len(t, next.History, 1)
	assert.Equal(t, "operator: needs legal review", next.History[0].Detail())
}

func TestEscalateWithoutReasonLeavesTicketUnchanged(t *testing.T) {
	e, _ := newTestEngine()
	tk := openTicket(1)
	before := tk.Clone()

	for _, reason := range []string{"", "   "} {
		next, changed, err := e.Apply(tk, "agent-1", Escalate("operator", reason))
		assert.ErrorIs(t, err, ErrReasonRequired)
		assert.False(t, changed)
		assert.Nil(t, next)
	}
	assert.Equal(t, before.Status, tk.Status)
	assert.Nil(t, tk.EscalatedTo)
	assert.Len(t, tk.History, len(before.History))

	_, _, err := e.Apply(tk, "agent-1", Escalate("", "because"))
	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestEscalateSameTargetIsNoop(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Escalate("operator", "first"))
	_, changed, err := e.Apply(tk, "agent-1", Escalate("operator", "again"))
	require.NoError(t, err)
	assert.False(t, changed)

	tk = apply(t, e, tk, "agent-1", Escalate("admin", "operator unavailable"))
	assert.Equal(t, "admin", *tk.EscalatedTo)
	assert.Len(t, tk.History, 2)
}

func TestTransfer(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Assign("agent-1"))

	_, _, err := e.Apply(tk, "agent-1", Transfer("agent-1"))
	assert.ErrorIs(t, err, ErrSelfTransfer)
	_, _, err = e.Apply(tk, "agent-1", Transfer("ghost"))
	assert.ErrorIs(t, err, ErrUnknownAgent)

	tk = apply(t, e, tk, "agent-1", Transfer("agent-2"))
	assert.Equal(t, "agent-2", *tk.AssignedTo)
	assert.Equal(t, domain.HistoryTransferred, tk.History[len(tk.History)-1].Kind)

	resolved := apply(t, e, tk, "agent-2", Resolve())
	_, _, err = e.Apply(resolved, "agent-2", Transfer("agent-1"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTagsAreIdempotent(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Tag("vip"))
	assert.Equal(t, []string{"vip"}, tk.Tags)

	_, changed, err := e.Apply(tk, "agent-1", Tag("vip"))
	require.NoError(t, err)
	assert.False(t, changed)

	tk = apply(t, e, tk, "agent-1", Untag("vip"))
	assert.Empty(t, tk.Tags)
	_, changed, err = e.Apply(tk, "agent-1", Untag("vip"))
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = e.Apply(tk, "agent-1", Tag(""))
	assert.ErrorIs(t, err, ErrEmptyTag)
}

func TestAddCollaborator(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", AddCollaborator("agent-2"))
	assert.Equal(t, []string{"agent-2"}, tk.Collaborators)
	assert.Equal(t, domain.HistoryCollaboratorAdded, tk.History[0].Kind)

	_, _, err := e.Apply(tk, "agent-1", AddCollaborator("agent-2"))
	assert.ErrorIs(t, err, ErrAlreadyCollaborator)
	_, _, err = e.Apply(tk, "agent-1", AddCollaborator("ghost"))
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestRequestRatingKeepsStatus(t *testing.T) {
	e, _ := newTestEngine()
	tk := openTicket(1)
	tk.Status = domain.TicketStatusResolved
	next := apply(t, e, tk, "agent-1", RequestRating())
	assert.Equal(t, domain.TicketStatusResolved, next.Status)
	require.Len(t, next.Messages, 1)
	assert.True(t, next.Messages[0].System)
	assert.Equal(t, domain.SenderSupport, next.Messages[0].Sender)
	assert.Empty(t, next.History)
}

func TestRate(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Rate(5))
	assert.Equal(t, 5, *tk.Rating)
	_, _, err := e.Apply(tk, "agent-1", Rate(6))
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestWaitingCycle(t *testing.T) {
	e, clk := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Assign("agent-1"))

	for i := 0; i < 3; i++ {
		clk.Advance(time.Minute)
		tk = apply(t, e, tk, "agent-1", SetWaiting())
		assert.Equal(t, domain.TicketStatusWaiting, tk.Status)
		require.NotNil(t, tk.WaitingSince)
		assert.Equal(t, clk.Now(), *tk.WaitingSince)

		tk = apply(t, e, tk, "agent-1", Resume())
		assert.Equal(t, domain.TicketStatusInProgress, tk.Status)
		assert.Nil(t, tk.WaitingSince)
	}

	_, _, err := e.Apply(openTicket(2), "agent-1", SetWaiting())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReopenAndClose(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Assign("agent-1"))
	tk = apply(t, e, tk, "agent-1", Resolve())
	tk = apply(t, e, tk, "agent-1", Reopen())
	assert.Equal(t, domain.TicketStatusInProgress, tk.Status)

	unassigned := openTicket(2)
	unassigned.Status = domain.TicketStatusResolved
	reopened := apply(t, e, unassigned, "agent-1", Reopen())
	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)

	closed := apply(t, e, tk, "agent-1", Close())
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	_, changed, err := e.Apply(closed, "agent-1", Close())
	require.NoError(t, err)
	assert.False(t, changed)
	_, _, err = e.Apply(closed, "agent-1", Reopen())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = e.Apply(closed, "agent-1", Reply("hello?"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReplyAndNote(t *testing.T) {
	e, _ := newTestEngine()
	tk := apply(t, e, openTicket(1), "agent-1", Reply("  Hello there  "))
	require.Len(t, tk.Messages, 1)
	assert.Equal(t, "Hello there", tk.Messages[0].Body)
	assert.Equal(t, domain.SenderSupport, tk.Messages[0].Sender)

	tk = apply(t, e, tk, "agent-1", AddInternalNote("user seems confused"))
	require.Len(t, tk.InternalNotes, 1)
	assert.Len(t, tk.Messages, 1, "notes never reach the public thread")

	_, _, err := e.Apply(tk, "agent-1", Reply(""))
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestApplyNeverTouchesInput(t *testing.T) {
	e, _ := newTestEngine()
	tk := openTicket(1)
	_ = apply(t, e, tk, "agent-1", Tag("vip"))
	_ = apply(t, e, tk, "agent-1", Assign("agent-1"))
	assert.Empty(t, tk.Tags)
	assert.Nil(t, tk.AssignedTo)
	assert.Empty(t, tk.History)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(domain.TicketStatusEscalated, domain.TicketStatusResolved))
	assert.True(t, CanTransition(domain.TicketStatusInProgress, domain.TicketStatusWaiting))
	assert.True(t, CanTransition(domain.TicketStatusWaiting, domain.TicketStatusInProgress))
	assert.False(t, CanTransition(domain.TicketStatusClosed, domain.TicketStatusOpen))
	assert.False(t, CanTransition(domain.TicketStatusEscalated, domain.TicketStatusOpen))
}
