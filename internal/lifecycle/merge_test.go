package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
)

func msg(id string, at time.Time) domain.Message {
	return domain.Message{ID: id, Sender: domain.SenderUser, Body: id, CreatedAt: at}
}

func TestMergeInterleavesMessages(t *testing.T) {
	e, _ := newTestEngine()
	target := openTicket(1005)
	target.Messages = []domain.Message{msg("t1", start.Add(-50*time.Minute)), msg("t2", start.Add(-10*time.Minute))}
	source := openTicket(1010)
	source.Messages = []domain.Message{msg("s1", start.Add(-40*time.Minute)), msg("s2", start.Add(-5*time.Minute))}
	source.InternalNotes = []domain.InternalNote{{ID: "n1", Body: "same user", CreatedAt: start.Add(-30 * time.Minute)}}

	merged, err := e.Merge(source, target, "agent-1")
	require.NoError(t, err)

	ids := make([]string, 0, len(merged.Messages))
	for _, m := range merged.Messages {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"t1", "s1", "t2", "s2"}, ids)
	assert.Len(t, merged.InternalNotes, 1)
	assert.Equal(t, []int64{1010}, merged.MergedFrom)

	last := merged.History[len(merged.History)-1]
	assert.Equal(t, domain.HistoryMerged, last.Kind)
	assert.Equal(t, "#1010", last.Detail())

	assert.Len(t, target.Messages, 2, "target must not be modified")
	assert.Len(t, source.Messages, 2, "source must not be modified")
}

func TestMergeAccumulatesMergedFrom(t *testing.T) {
	e, _ := newTestEngine()
	target := openTicket(1005)
	target.MergedFrom = []int64{1001}

	merged, err := e.Merge(openTicket(1010), target, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1001, 1010}, merged.MergedFrom)
}

func TestMergeGuards(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Merge(openTicket(7), openTicket(7), "agent-1")
	assert.ErrorIs(t, err, ErrMergeSelf)

	other := openTicket(8)
	other.OdID = "OD-000099"
	_, err = e.Merge(other, openTicket(7), "agent-1")
	assert.ErrorIs(t, err, ErrMergeDifferentUser)

	anonymous := openTicket(9)
	anonymous.OdID = ""
	target := openTicket(7)
	target.OdID = ""
	_, err = e.Merge(anonymous, target, "agent-1")
	assert.ErrorIs(t, err, ErrMergeDifferentUser)

	_, err = e.Merge(nil, openTicket(7), "agent-1")
	assert.ErrorIs(t, err, ErrTargetRequired)
}

func TestCreate(t *testing.T) {
	e, _ := newTestEngine()
	tk, err := e.Create(1042, "agent-1", CreateInput{
		OdID:     " OD-000042 ",
		Subject:  "Cannot withdraw",
		Body:     "withdrawal stuck",
		Priority: domain.TicketPriorityUrgent,
		Tags:     []string{"payments", "payments", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "OD-000042", tk.OdID)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
	assert.Equal(t, start.Add(time.Hour), tk.SLADeadline)
	assert.Equal(t, domain.CategoryOther, tk.Category)
	assert.Equal(t, "en", tk.Language)
	assert.Equal(t, []string{"payments"}, tk.Tags)
	require.Len(t, tk.Messages, 1)
	require.Len(t, tk.History, 1)
	assert.Equal(t, domain.HistoryCreated, tk.History[0].Kind)

	_, err = e.Create(1043, "agent-1", CreateInput{OdID: "OD-1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvertChat(t *testing.T) {
	e, _ := newTestEngine()
	chat := domain.LiveChat{
		ID:       "chat-9",
		OdID:     "OD-000042",
		Priority: domain.TicketPriorityLow,
		AgentID:  domain.StringPtr("agent-2"),
		Transcript: []domain.Message{
			msg("late", start.Add(-time.Minute)),
			msg("early", start.Add(-20*time.Minute)),
		},
	}
	tk, err := e.ConvertChat(2001, "agent-2", chat)
	require.NoError(t, err)
	assert.Equal(t, "Live chat chat-9", tk.Subject)
	assert.Equal(t, "early", tk.Messages[0].ID)
	assert.Equal(t, domain.TicketStatusInProgress, tk.Status)
	assert.Equal(t, "agent-2", *tk.AssignedTo)
	assert.Equal(t, start.Add(24*time.Hour), tk.SLADeadline)
	require.Len(t, tk.History, 2)
	assert.Equal(t, domain.HistoryConverted, tk.History[0].Kind)
	assert.Equal(t, "chat-9", tk.History[0].Reason)

	chat.AgentID = domain.StringPtr("ghost")
	tk, err = e.ConvertChat(2002, "agent-2", chat)
	require.NoError(t, err)
	assert.Nil(t, tk.AssignedTo)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
}
