// Package agentapi is the HTTP client for the support-agent backend.
package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/reconcile"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// TokenSource supplies the bearer token for backend calls.
type TokenSource interface {
	Token() (string, error)
}

// Client implements reconcile.Remote over HTTP/JSON.
type Client struct {
	baseURL string
	tokens  TokenSource
	timeout time.Duration
	logger  *zap.Logger
}

var _ reconcile.Remote = (*Client)(nil)

// Config bundles client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *zap.Logger
}

// NewClient builds a client for cfg.BaseURL.
func NewClient(cfg Config) *Client {
	c := &Client{baseURL: cfg.BaseURL, tokens: cfg.Tokens, timeout: cfg.Timeout, logger: cfg.Logger}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// GetTickets lists tickets, optionally narrowed by query.
func (c *Client) GetTickets(ctx context.Context, query reconcile.TicketQuery) ([]domain.Ticket, error) {
	q := url.Values{}
	if query.Status != "" {
		q.Set("status", string(query.Status))
	}
	if query.Priority != "" {
		q.Set("priority", string(query.Priority))
	}
	if query.Category != "" {
		q.Set("category", string(query.Category))
	}
	path := "/support/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out ticketListDTO
	if err := c.do(ctx, fiber.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(out.Tickets))
	for _, t := range out.Tickets {
		tickets = append(tickets, *t.toTicket(nil))
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its full message thread.
func (c *Client) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	var out ticketDetailDTO
	if err := c.do(ctx, fiber.MethodGet, ticketPath(id, ""), nil, &out); err != nil {
		return nil, err
	}
	return out.Ticket.toTicket(out.Messages), nil
}

// UpdateTicket applies a partial update.
func (c *Client) UpdateTicket(ctx context.Context, id int64, update reconcile.TicketUpdate) (*domain.Ticket, error) {
	req := updateRequest{AssignedTo: update.AssignedTo, Rating: update.Rating}
	if update.Status != nil {
		s := string(*update.Status)
		req.Status = &s
	}
	if update.Priority != nil {
		p := string(*update.Priority)
		req.Priority = &p
	}
	return c.ticketCall(ctx, fiber.MethodPatch, ticketPath(id, ""), req)
}

// ReplyToTicket posts a public reply.
func (c *Client) ReplyToTicket(ctx context.Context, id int64, text string) error {
	return c.do(ctx, fiber.MethodPost, ticketPath(id, "/reply"), textRequest{Text: text}, nil)
}

// AddInternalNote posts an agent-only note.
func (c *Client) AddInternalNote(ctx context.Context, id int64, text string) error {
	return c.do(ctx, fiber.MethodPost, ticketPath(id, "/notes"), textRequest{Text: text}, nil)
}

// EscalateTicket escalates to target with reason.
func (c *Client) EscalateTicket(ctx context.Context, id int64, target, reason string) error {
	return c.do(ctx, fiber.MethodPost, ticketPath(id, "/escalate"), escalateRequest{Target: target, Reason: reason}, nil)
}

// AddTicketTag adds a tag and returns the updated ticket.
func (c *Client) AddTicketTag(ctx context.Context, id int64, tag string) (*domain.Ticket, error) {
	return c.ticketCall(ctx, fiber.MethodPost, ticketPath(id, "/tags"), tagRequest{Tag: tag})
}

// RemoveTicketTag removes a tag and returns the updated ticket.
func (c *Client) RemoveTicketTag(ctx context.Context, id int64, tag string) (*domain.Ticket, error) {
	return c.ticketCall(ctx, fiber.MethodDelete, ticketPath(id, "/tags/"+url.PathEscape(tag)), nil)
}

// RequestTicketRating asks the end user to rate the ticket.
func (c *Client) RequestTicketRating(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodPost, ticketPath(id, "/rating-request"), nil, nil)
}

// GetAgents lists support agents.
func (c *Client) GetAgents(ctx context.Context) ([]domain.Agent, error) {
	var out agentListDTO
	if err := c.do(ctx, fiber.MethodGet, "/support/agents", nil, &out); err != nil {
		return nil, err
	}
	agents := make([]domain.Agent, 0, len(out.Agents))
	for _, a := range out.Agents {
		agents = append(agents, a.toAgent())
	}
	return agents, nil
}

func (c *Client) ticketCall(ctx context.Context, method, path string, body any) (*domain.Ticket, error) {
	var out ticketDTO
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		// Acknowledged without a body; the caller re-fetches.
		return nil, nil
	}
	return out.toTicket(nil), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	agent := newAgent(method, c.baseURL+path)
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("service token: %w", err)
		}
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	start := time.Now()
	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	c.logger.Debug("backend call",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", code), zap.Duration("latency", time.Since(start)))

	if code < 200 || code >= 300 {
		return &StatusError{Method: method, Path: path, Code: code, Body: truncate(string(respBody), 256)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func newAgent(method, target string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(target)
	case fiber.MethodPatch:
		return fiber.Patch(target)
	case fiber.MethodDelete:
		return fiber.Delete(target)
	default:
		return fiber.Get(target)
	}
}

func ticketPath(id int64, suffix string) string {
	return "/support/tickets/" + strconv.FormatInt(id, 10) + suffix
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
