// Package lifecycle enacts ticket status transitions and structural changes.
//
// Operations are expressed as Mutations: functions that validate a ticket
// and, only when validation passes, change it and append the audit entry.
// The same Mutation is used to validate an intent before it is dispatched
// and to apply it locally when the backend cannot be reached.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/domain"
)

// Directory resolves agents for assignment and collaboration checks.
type Directory interface {
	Agent(id string) (domain.Agent, bool)
}

// Env is the context a Mutation runs in.
type Env struct {
	Actor  string
	Now    time.Time
	Agents Directory
	NewID  func() string
}

// Mutation validates t and applies one operation to it. It reports whether
// anything changed; an unchanged ticket means the operation was a no-op.
type Mutation func(t *domain.Ticket, env Env) (bool, error)

// Engine binds mutations to a clock and an agent directory.
type Engine struct {
	clock  clock.Clock
	agents Directory
	newID  func() string
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Clock  clock.Clock
	Agents Directory
	NewID  func() string
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{clock: deps.Clock, agents: deps.Agents, newID: deps.NewID}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Now returns the engine clock time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Env builds the mutation environment for actor.
func (e *Engine) Env(actor string) Env {
	return Env{Actor: actor, Now: e.clock.Now(), Agents: e.agents, NewID: e.newID}
}

// Apply runs m against a copy of t. The original is never modified; on error
// or no-op the returned ticket is nil.
func (e *Engine) Apply(t *domain.Ticket, actor string, m Mutation) (*domain.Ticket, bool, error) {
	return e.ApplyEnv(t, e.Env(actor), m)
}

// ApplyEnv is Apply with a caller supplied environment.
func (e *Engine) ApplyEnv(t *domain.Ticket, env Env, m Mutation) (*domain.Ticket, bool, error) {
	next := t.Clone()
	changed, err := m(next, env)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return nil, false, nil
	}
	next.UpdatedAt = env.Now
	return next, true, nil
}

func record(t *domain.Ticket, env Env, entry domain.HistoryEntry) {
	entry.ID = env.NewID()
	entry.Actor = env.Actor
	entry.At = env.Now
	t.History = append(t.History, entry)
}

func knownAgent(env Env, id string) bool {
	if env.Agents == nil {
		return false
	}
	_, ok := env.Agents.Agent(id)
	return ok
}
