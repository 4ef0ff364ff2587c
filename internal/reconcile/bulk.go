package reconcile

import (
	"context"

	"github.com/spec-kit/support-console/internal/queue"
)

// View identifies the ranked, filtered queue the agent selected from.
type View struct {
	Filter queue.Filter
	Sort   queue.SortKey
}

// BulkResult reports per-ticket results of a bulk action.
type BulkResult struct {
	Outcomes map[int64]Outcome
	Errors   map[int64]error
	// Skipped are selected ids that are not in the current view.
	Skipped []int64
}

// AssignSelected assigns agentID to every selected ticket of the view.
func (r *Reconciler) AssignSelected(ctx context.Context, actor string, view View, ids []int64, agentID string) BulkResult {
	return r.bulk(ctx, actor, view, ids, func(id int64) Command { return Assign(id, agentID) })
}

// EscalateSelected escalates every selected ticket of the view.
func (r *Reconciler) EscalateSelected(ctx context.Context, actor string, view View, ids []int64, target, reason string) BulkResult {
	return r.bulk(ctx, actor, view, ids, func(id int64) Command { return Escalate(id, target, reason) })
}

func (r *Reconciler) bulk(ctx context.Context, actor string, view View, ids []int64, build func(int64) Command) BulkResult {
	ranked := queue.Rank(r.store.List(), view.Filter, view.Sort, r.engine.Now())
	sel := queue.Select(ranked, ids)

	res := BulkResult{
		Outcomes: make(map[int64]Outcome, len(sel.IDs)),
		Errors:   make(map[int64]error),
		Skipped:  sel.Skipped,
	}
	for _, id := range sel.IDs {
		outcome, err := r.Execute(ctx, actor, build(id))
		if err != nil {
			res.Errors[id] = err
			continue
		}
		res.Outcomes[id] = outcome
	}
	return res
}
