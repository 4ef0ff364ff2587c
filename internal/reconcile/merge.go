package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/lifecycle"
	"github.com/spec-kit/support-console/internal/store"
)

// Merge folds sourceID into targetID and removes the source from the active
// store. The backend has no merge endpoint, so the survivor is kept as a
// local change.
func (r *Reconciler) Merge(ctx context.Context, actor string, sourceID, targetID int64) (outcome Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		label := string(outcome)
		if err != nil {
			label = "rejected"
		}
		r.observe("merge", label, time.Since(start))
	}()

	if sourceID == targetID {
		return "", lifecycle.ErrMergeSelf
	}
	source, ok := r.store.Get(sourceID)
	if !ok {
		return OutcomeDeclined, nil
	}
	target, ok := r.store.Get(targetID)
	if !ok {
		return OutcomeDeclined, nil
	}

	merged, err := r.engine.Merge(source, target, actor)
	if err != nil {
		return "", err
	}
	if !r.acquire(ctx, fmt.Sprintf("merge:%d:%d", sourceID, targetID)) {
		return OutcomeDuplicate, nil
	}

	r.store.PutLocal(target, merged, store.Always)
	r.store.Remove(source.ID)
	r.logger.Info("tickets merged",
		zap.Int64("source_id", source.ID), zap.Int64("target_id", merged.ID), zap.String("actor", actor))

	r.publishChanged(ctx, actor, "merge", merged, true)
	r.publish(ctx, events.Event{
		Type:     events.EventTicketRemoved,
		TicketID: source.ID,
		Actor:    actor,
		Payload:  events.TicketRemovedPayload{MergedInto: merged.ID},
	})
	r.notify(ctx, actor, merged.ID, fmt.Sprintf("%s merged into %s", source.Code(), merged.Code()))
	return OutcomeLocal, nil
}
