package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/lifecycle"
	"github.com/spec-kit/support-console/internal/reconcile"
	"github.com/spec-kit/support-console/internal/store"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// TicketsHandler exposes ticket detail and every ticket action.
type TicketsHandler struct {
	store      *store.Store
	reconciler *reconcile.Reconciler
	clock      clock.Clock
	validator  *dto.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(st *store.Store, reconciler *reconcile.Reconciler, clk clock.Clock, validator *dto.Validator) *TicketsHandler {
	return &TicketsHandler{store: st, reconciler: reconciler, clock: clk, validator: validator}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.reconciler.Create(c.UserContext(), auth.Actor(c), lifecycle.CreateInput{
		OdID:     req.OdID,
		Subject:  req.Subject,
		Body:     req.Body,
		Category: domain.TicketCategory(req.Category),
		Priority: domain.TicketPriority(req.Priority),
		Language: req.Language,
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.detail(c, ticket)})
}

// ConvertChat POST /tickets/from-chat.
func (h *TicketsHandler) ConvertChat(c *fiber.Ctx) error {
	var req dto.ConvertChatRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	chat := domain.LiveChat{
		ID:        req.ChatID,
		OdID:      req.OdID,
		Subject:   req.Subject,
		Language:  req.Language,
		Category:  domain.TicketCategory(req.Category),
		Priority:  domain.TicketPriority(req.Priority),
		AgentID:   req.AgentID,
		StartedAt: req.StartedAt,
	}
	for _, m := range req.Transcript {
		chat.Transcript = append(chat.Transcript, domain.Message{
			ID:        uuid.NewString(),
			Sender:    domain.MessageSender(m.Sender),
			AuthorID:  m.AuthorID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	ticket, err := h.reconciler.ConvertChat(c.UserContext(), auth.Actor(c), chat)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.detail(c, ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, ok := h.store.Get(id)
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": h.detail(c, ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Assign(id, strings.TrimSpace(req.AgentID))
	})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.Resolve)
}

// Escalate POST /tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	var req dto.EscalateRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Escalate(id, req.Target, req.Reason)
	})
}

// Transfer POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	var req dto.AssignRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Transfer(id, strings.TrimSpace(req.AgentID))
	})
}

// AddTag POST /tickets/:id/tags.
func (h *TicketsHandler) AddTag(c *fiber.Ctx) error {
	var req dto.TagRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Tag(id, req.Tag)
	})
}

// RemoveTag DELETE /tickets/:id/tags/:tag.
func (h *TicketsHandler) RemoveTag(c *fiber.Ctx) error {
	tag, err := pathParam(c, "tag")
	if err != nil {
		return err
	}
	return h.command(c, nil, func(id int64) reconcile.Command {
		return reconcile.Untag(id, tag)
	})
}

// AddCollaborator POST /tickets/:id/collaborators.
func (h *TicketsHandler) AddCollaborator(c *fiber.Ctx) error {
	var req dto.AssignRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.AddCollaborator(id, strings.TrimSpace(req.AgentID))
	})
}

// RequestRating POST /tickets/:id/rating-request.
func (h *TicketsHandler) RequestRating(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.RequestRating)
}

// Rate POST /tickets/:id/rating.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Rate(id, req.Score)
	})
}

// Reply POST /tickets/:id/replies. A sent reply discards the agent's draft.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.TextRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.Reply(id, req.Text)
	})
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	var req dto.TextRequest
	return h.command(c, &req, func(id int64) reconcile.Command {
		return reconcile.AddInternalNote(id, req.Text)
	})
}

// SetWaiting POST /tickets/:id/waiting.
func (h *TicketsHandler) SetWaiting(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.SetWaiting)
}

// Resume POST /tickets/:id/resume.
func (h *TicketsHandler) Resume(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.Resume)
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.Reopen)
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	return h.command(c, nil, reconcile.CloseTicket)
}

// Merge POST /tickets/:id/merge folds source_id into the ticket in the path.
func (h *TicketsHandler) Merge(c *fiber.Ctx) error {
	targetID, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.MergeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	outcome, err := h.reconciler.Merge(c.UserContext(), auth.Actor(c), req.SourceID, targetID)
	if err != nil {
		return err
	}
	return h.respond(c, targetID, outcome)
}

// SaveDraft PUT /tickets/:id/draft.
func (h *TicketsHandler) SaveDraft(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.DraftRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if _, ok := h.store.Get(id); !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	h.store.SaveDraft(id, auth.Actor(c), req.Text)
	return c.SendStatus(http.StatusNoContent)
}

// GetDraft GET /tickets/:id/draft.
func (h *TicketsHandler) GetDraft(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	text, ok := h.store.Draft(id, auth.Actor(c))
	if !ok {
		return apperrors.NewNotFound("draft", map[string]any{"ticket_id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"text": text}})
}

// DiscardDraft DELETE /tickets/:id/draft.
func (h *TicketsHandler) DiscardDraft(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	h.store.DiscardDraft(id, auth.Actor(c))
	return c.SendStatus(http.StatusNoContent)
}

// command binds req when given, builds the command and executes it.
func (h *TicketsHandler) command(c *fiber.Ctx, req interface{}, build func(int64) reconcile.Command) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	if req != nil {
		if err := h.bind(c, req); err != nil {
			return err
		}
	}
	cmd := build(id)
	outcome, err := h.reconciler.Execute(c.UserContext(), auth.Actor(c), cmd)
	if err != nil {
		return err
	}
	if cmd.Op == "reply" && (outcome == reconcile.OutcomeRemote || outcome == reconcile.OutcomeLocal) {
		h.store.DiscardDraft(id, auth.Actor(c))
	}
	return h.respond(c, id, outcome)
}

func (h *TicketsHandler) respond(c *fiber.Ctx, id int64, outcome reconcile.Outcome) error {
	if outcome == reconcile.OutcomeDeclined {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	resp := dto.CommandResponse{Outcome: string(outcome)}
	if ticket, ok := h.store.Get(id); ok {
		resp.Ticket = h.detail(c, ticket)
	}
	return c.JSON(fiber.Map{"data": resp})
}

func (h *TicketsHandler) detail(c *fiber.Ctx, t *domain.Ticket) *dto.TicketDetailResponse {
	draft, _ := h.store.Draft(t.ID, auth.Actor(c))
	return dto.NewTicketDetail(t, h.clock.Now(), h.store.IsLocal(t.ID), draft)
}

func (h *TicketsHandler) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.validator.Validate(out)
}

// ticketID parses the :id param. Provisional tickets have negative ids.
func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

// pathParam returns the unescaped value of a route param. Params alias the
// request buffer, which fasthttp reuses, so the value is copied before it can
// reach the store.
func pathParam(c *fiber.Ctx, name string) (string, error) {
	raw := utils.CopyString(c.Params(name))
	value, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(value) == "" {
		return "", apperrors.NewValidationError("invalid path parameter", map[string]any{name: raw})
	}
	return value, nil
}
