package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/reconcile"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, Tokens: staticToken("svc-token")}), &calls
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetTicketSplitsInternalMessages(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ticket": map[string]any{"id": 1001, "od_id": "OD-000042", "status": "open", "priority": "high"},
			"messages": []map[string]any{
				{"id": "m1", "sender": "user", "body": "help", "is_internal": false},
				{"id": "m2", "sender": "support", "body": "vip customer", "is_internal": true},
				{"id": "m3", "sender": "support", "body": "on it", "is_internal": false},
			},
		})
	})

	tk, err := client.GetTicket(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), tk.ID)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
	require.Len(t, tk.Messages, 2)
	assert.Equal(t, "m1", tk.Messages[0].ID)
	assert.Equal(t, "m3", tk.Messages[1].ID)
	require.Len(t, tk.InternalNotes, 1)
	assert.Equal(t, "vip customer", tk.InternalNotes[0].Body)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/support/tickets/1001", (*calls)[0].path)
	assert.Equal(t, "Bearer svc-token", (*calls)[0].auth)
}

func TestGetTicketsSendsFilters(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"tickets": []map[string]any{{"id": 1}, {"id": 2}}})
	})

	tickets, err := client.GetTickets(context.Background(), reconcile.TicketQuery{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityUrgent})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
	assert.Equal(t, "priority=urgent&status=open", (*calls)[0].query)
}

func TestUpdateTicketSendsPartialFields(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": 7, "status": "resolved"})
	})
	resolved := domain.TicketStatusResolved

	tk, err := client.UpdateTicket(context.Background(), 7, reconcile.TicketUpdate{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, tk)
	assert.Equal(t, domain.TicketStatusResolved, tk.Status)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Equal(t, map[string]any{"status": "resolved"}, call.body)
}

func TestAcknowledgedCallsReturnNoTicket(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.EscalateTicket(context.Background(), 3, "operator", "needs legal review"))
	require.NoError(t, client.ReplyToTicket(context.Background(), 3, "hello"))
	require.NoError(t, client.RequestTicketRating(context.Background(), 3))
	tk, err := client.RemoveTicketTag(context.Background(), 3, "vip")
	require.NoError(t, err)
	assert.Nil(t, tk)

	paths := make([]string, 0, len(*calls))
	for _, c := range *calls {
		paths = append(paths, c.method+" "+c.path)
	}
	assert.Equal(t, []string{
		"POST /support/tickets/3/escalate",
		"POST /support/tickets/3/reply",
		"POST /support/tickets/3/rating-request",
		"DELETE /support/tickets/3/tags/vip",
	}, paths)
	assert.Equal(t, map[string]any{"target": "operator", "reason": "needs legal review"}, (*calls)[0].body)
}

func TestTagWithSpaceIsEscapedOnce(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := client.RemoveTicketTag(context.Background(), 3, "needs review")
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/support/tickets/3/tags/needs review", (*calls)[0].path)
}

func TestNon2xxIsStatusError(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.AddTicketTag(context.Background(), 9, "vip")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Contains(t, statusErr.Body, "boom")
}

func TestUnreachableBackendErrors(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := client.GetAgents(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GetAgents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAgents(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"agents": []map[string]any{{"id": "agent-1", "name": "Ada", "status": "online", "ticket_count": 3}}})
	})

	agents, err := client.GetAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Agent{{ID: "agent-1", Name: "Ada", Status: domain.AgentOnline, TicketCount: 3}}, agents)
}
