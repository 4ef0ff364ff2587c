package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/queue"
	"github.com/spec-kit/support-console/internal/reconcile"
	"github.com/spec-kit/support-console/internal/sla"
	"github.com/spec-kit/support-console/internal/store"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// QueueHandler serves the ranked work queue and its bulk actions.
type QueueHandler struct {
	store      *store.Store
	reconciler *reconcile.Reconciler
	clock      clock.Clock
	validator  *dto.Validator
}

// NewQueueHandler constructs handler.
func NewQueueHandler(st *store.Store, reconciler *reconcile.Reconciler, clk clock.Clock, validator *dto.Validator) *QueueHandler {
	return &QueueHandler{store: st, reconciler: reconciler, clock: clk, validator: validator}
}

// List GET /queue.
func (h *QueueHandler) List(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return err
	}
	now := h.clock.Now()
	ranked := queue.Rank(h.store.List(), view.Filter, view.Sort, now)
	items := make([]dto.QueueItem, 0, len(ranked))
	for _, entry := range queue.Annotate(ranked, now) {
		items = append(items, dto.NewQueueItem(entry, h.store.IsLocal(entry.Ticket.ID)))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Summary GET /queue/summary.
func (h *QueueHandler) Summary(c *fiber.Ctx) error {
	summary := queue.Summarize(h.store.List(), h.clock.Now())
	return c.JSON(fiber.Map{"data": dto.NewQueueSummary(summary)})
}

// BulkAssign POST /queue/bulk/assign. The query string names the view the
// selection was made from.
func (h *QueueHandler) BulkAssign(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return err
	}
	var req dto.BulkAssignRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	res := h.reconciler.AssignSelected(c.UserContext(), auth.Actor(c), view, req.IDs, strings.TrimSpace(req.AgentID))
	return c.JSON(fiber.Map{"data": bulkResponse(res)})
}

// BulkEscalate POST /queue/bulk/escalate.
func (h *QueueHandler) BulkEscalate(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return err
	}
	var req dto.BulkEscalateRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	res := h.reconciler.EscalateSelected(c.UserContext(), auth.Actor(c), view, req.IDs, req.Target, req.Reason)
	return c.JSON(fiber.Map{"data": bulkResponse(res)})
}

func (h *QueueHandler) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.validator.Validate(out)
}

func parseView(c *fiber.Ctx) (reconcile.View, error) {
	var view reconcile.View
	sortKey, err := queue.ParseSortKey(c.Query("sort"))
	if err != nil {
		return view, apperrors.NewValidationError(err.Error(), map[string]any{"sort": c.Query("sort")})
	}
	assignment, err := queue.ParseAssignment(c.Query("assignment"))
	if err != nil {
		return view, apperrors.NewValidationError(err.Error(), map[string]any{"assignment": c.Query("assignment")})
	}
	view.Sort = sortKey
	view.Filter.Assignment = assignment
	view.Filter.Agent = auth.Actor(c)

	for _, raw := range splitList(c.Query("urgency")) {
		u, err := sla.ParseUrgency(raw)
		if err != nil {
			return view, apperrors.NewValidationError(err.Error(), map[string]any{"urgency": raw})
		}
		view.Filter.Urgencies = append(view.Filter.Urgencies, u)
	}
	for _, raw := range splitList(c.Query("priority")) {
		p := domain.TicketPriority(strings.ToLower(raw))
		if !p.Valid() {
			return view, apperrors.NewValidationError("unknown priority", map[string]any{"priority": raw})
		}
		view.Filter.Priorities = append(view.Filter.Priorities, p)
	}
	for _, raw := range splitList(c.Query("category")) {
		cat := domain.TicketCategory(strings.ToLower(raw))
		if !cat.Valid() {
			return view, apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
		}
		view.Filter.Categories = append(view.Filter.Categories, cat)
	}
	view.Filter.Tags = splitList(c.Query("tag"))
	return view, nil
}

// splitList reads comma separated query values.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func bulkResponse(res reconcile.BulkResult) dto.BulkResponse {
	out := dto.BulkResponse{
		Outcomes: make(map[int64]string, len(res.Outcomes)),
		Errors:   make(map[int64]string, len(res.Errors)),
		Skipped:  res.Skipped,
	}
	if out.Skipped == nil {
		out.Skipped = []int64{}
	}
	for id, outcome := range res.Outcomes {
		out.Outcomes[id] = string(outcome)
	}
	for id, err := range res.Errors {
		out.Errors[id] = apperrors.ToDomainError(err).Code
	}
	return out
}
