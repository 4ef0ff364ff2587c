// Package reconcile wraps lifecycle operations with the remote-first,
// local-fallback policy of the console.
//
// Each command is validated locally before anything is dispatched. A valid
// command then takes exactly one path: the backend accepts it and its
// canonical ticket replaces the local copy, or the backend fails and the same
// mutation is applied to the store directly. The agent is notified of success
// either way.
//
// Changes the backend has not recorded, whether local-only features or
// commands that fell back, are laid over every canonical copy that later
// replaces the local one.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/lifecycle"
	"github.com/spec-kit/support-console/internal/store"
)

// Outcome reports which path a command took.
type Outcome string

const (
	// OutcomeRemote means the backend accepted the command.
	OutcomeRemote Outcome = "remote"
	// OutcomeLocal means the command was applied to the store only.
	OutcomeLocal Outcome = "local"
	// OutcomeNoop means the command would not change the ticket.
	OutcomeNoop Outcome = "noop"
	// OutcomeDuplicate means the same action was already taken.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeDeclined means the ticket no longer exists.
	OutcomeDeclined Outcome = "declined"
)

// Recorder observes command outcomes.
type Recorder interface {
	ObserveCommand(op string, outcome string, elapsed time.Duration)
}

// Reconciler executes commands against the store and the backend.
type Reconciler struct {
	mu            sync.Mutex
	store         *store.Store
	engine        *lifecycle.Engine
	remote        Remote
	guard         ActionGuard
	dispatcher    events.Dispatcher
	recorder      Recorder
	logger        *zap.Logger
	remoteTimeout time.Duration
}

// Dependencies bundles collaborators for the reconciler. Remote, Guard,
// Dispatcher and Recorder are optional.
type Dependencies struct {
	Store         *store.Store
	Engine        *lifecycle.Engine
	Remote        Remote
	Guard         ActionGuard
	Dispatcher    events.Dispatcher
	Recorder      Recorder
	Logger        *zap.Logger
	RemoteTimeout time.Duration
}

// New constructs the reconciler.
func New(deps Dependencies) *Reconciler {
	r := &Reconciler{
		store:         deps.Store,
		engine:        deps.Engine,
		remote:        deps.Remote,
		guard:         deps.Guard,
		dispatcher:    deps.Dispatcher,
		recorder:      deps.Recorder,
		logger:        deps.Logger,
		remoteTimeout: deps.RemoteTimeout,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.remoteTimeout <= 0 {
		r.remoteTimeout = 10 * time.Second
	}
	return r
}

// Execute runs cmd on behalf of actor. Only validation failures are returned
// as errors; backend failures degrade to the local path.
func (r *Reconciler) Execute(ctx context.Context, actor string, cmd Command) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.execute(ctx, actor, cmd)
}

func (r *Reconciler) execute(ctx context.Context, actor string, cmd Command) (outcome Outcome, err error) {
	start := time.Now()
	defer func() {
		label := string(outcome)
		if err != nil {
			label = "rejected"
		}
		r.observe(cmd.Op, label, time.Since(start))
	}()

	current, ok := r.store.Get(cmd.TicketID)
	if !ok {
		r.logger.Debug("command declined, ticket not found",
			zap.String("op", cmd.Op), zap.Int64("ticket_id", cmd.TicketID))
		return OutcomeDeclined, nil
	}

	next, changed, err := r.engine.Apply(current, actor, cmd.Mutate)
	if err != nil {
		return "", err
	}
	if !changed {
		return OutcomeNoop, nil
	}

	key := fmt.Sprintf("%s:%d:%d:%s", cmd.Op, cmd.TicketID, current.UpdatedAt.UnixNano(), cmd.Key)
	if !r.acquire(ctx, key) {
		return OutcomeDuplicate, nil
	}

	if canonical, ok := r.dispatch(ctx, cmd, next); ok {
		next = r.store.Confirm(canonical, next)
		outcome = OutcomeRemote
	} else {
		keep := store.UntilCaughtUp
		if cmd.Call == nil {
			keep = store.Always
		}
		r.store.PutLocal(current, next, keep)
		outcome = OutcomeLocal
	}

	r.publishChanged(ctx, actor, cmd.Op, next, outcome == OutcomeLocal)
	r.notify(ctx, actor, next.ID, fmt.Sprintf("%s (%s)", cmd.Done, next.Code()))
	return outcome, nil
}

// dispatch performs the remote side of cmd. It reports false when the
// command is local-only, the ticket is unknown to the backend or the backend
// could not be used.
func (r *Reconciler) dispatch(ctx context.Context, cmd Command, next *domain.Ticket) (*domain.Ticket, bool) {
	if cmd.Call == nil || r.remote == nil || next.IsProvisional() {
		return nil, false
	}
	callCtx, cancel := context.WithTimeout(ctx, r.remoteTimeout)
	defer cancel()

	canonical, err := cmd.Call(callCtx, r.remote, next)
	if err != nil {
		r.logger.Warn("remote call failed, applying locally",
			zap.String("op", cmd.Op), zap.Int64("ticket_id", cmd.TicketID), zap.Error(err))
		return nil, false
	}
	if canonical == nil {
		canonical, err = r.remote.GetTicket(callCtx, cmd.TicketID)
		if err != nil || canonical == nil {
			r.logger.Warn("re-fetch after remote call failed, applying locally",
				zap.String("op", cmd.Op), zap.Int64("ticket_id", cmd.TicketID), zap.Error(err))
			return nil, false
		}
	}
	return canonical, true
}

func (r *Reconciler) acquire(ctx context.Context, key string) bool {
	if r.guard == nil {
		return true
	}
	ok, err := r.guard.Acquire(ctx, key)
	if err != nil {
		r.logger.Warn("action guard unavailable", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}

func (r *Reconciler) observe(op, outcome string, elapsed time.Duration) {
	if r.recorder != nil {
		r.recorder.ObserveCommand(op, outcome, elapsed)
	}
}

func (r *Reconciler) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = r.engine.Now()
	if err := r.dispatcher.Publish(ctx, event); err != nil {
		r.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (r *Reconciler) publishChanged(ctx context.Context, actor, op string, t *domain.Ticket, local bool) {
	r.publish(ctx, events.Event{
		Type:     events.EventTicketChanged,
		TicketID: t.ID,
		Actor:    actor,
		Payload:  events.TicketChangedPayload{Op: op, Local: local, Ticket: t.Clone()},
	})
}

func (r *Reconciler) notify(ctx context.Context, actor string, ticketID int64, message string) {
	r.publish(ctx, events.Event{
		Type:     events.EventNotification,
		TicketID: ticketID,
		Actor:    actor,
		Payload:  events.NotificationPayload{Level: events.LevelSuccess, Message: message},
	})
}
