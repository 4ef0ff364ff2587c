package reconcile

import (
	"context"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/lifecycle"
)

// Create opens a ticket in the store under a provisional id. The backend has
// no create endpoint, so new tickets stay local.
func (r *Reconciler) Create(ctx context.Context, actor string, input lifecycle.CreateInput) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateCreate(input); err != nil {
		return nil, err
	}
	t, err := r.engine.Create(r.store.NextID(), actor, input)
	if err != nil {
		return nil, err
	}
	r.added(ctx, actor, "create", t)
	return t.Clone(), nil
}

// ConvertChat turns a live chat into a ticket.
func (r *Reconciler) ConvertChat(ctx context.Context, actor string, chat domain.LiveChat) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.engine.ConvertChat(r.store.NextID(), actor, chat)
	if err != nil {
		return nil, err
	}
	r.added(ctx, actor, "convert", t)
	return t.Clone(), nil
}

func (r *Reconciler) added(ctx context.Context, actor, op string, t *domain.Ticket) {
	r.store.Put(t)
	r.store.MarkLocal(t.ID)
	r.observe(op, string(OutcomeLocal), 0)
	r.publishChanged(ctx, actor, op, t, true)
	r.notify(ctx, actor, t.ID, "Ticket created ("+t.Code()+")")
}

func validateCreate(input lifecycle.CreateInput) error {
	if input.Category != "" && !input.Category.Valid() {
		return lifecycle.ErrInvalidInput.WithDetails(map[string]any{"category": "unknown category"})
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return lifecycle.ErrInvalidInput.WithDetails(map[string]any{"priority": "unknown priority"})
	}
	return nil
}
