// Package store holds the in-memory ticket collection the console presents.
//
// The store is copy-on-write: every ticket handed in or out is a deep clone,
// so callers can never mutate shared state outside the command path.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// Store is the in-memory source of truth for tickets and agents, plus the
// view-layer drafts kept apart from domain state.
type Store struct {
	mu         sync.RWMutex
	tickets    map[int64]*domain.Ticket
	agents     map[string]domain.Agent
	pending    map[int64]*pendingChange
	tombstones map[int64]struct{}
	drafts     map[draftKey]string
	lastLocal  int64
}

// Retention says how long unconfirmed local facts outlive the backend copy.
type Retention int

const (
	// UntilCaughtUp facts belong to commands the backend failed to take.
	// They are dropped once a refresh lists a backend copy at least as new.
	UntilCaughtUp Retention = iota
	// Always facts belong to features the backend does not store, such as
	// merges and collaborators.
	Always
)

type pendingChange struct {
	sticky   domain.LocalFacts
	fallback domain.LocalFacts
	at       time.Time
}

func (p *pendingChange) empty() bool {
	return p.sticky.Empty() && p.fallback.Empty()
}

func (p *pendingChange) applyTo(t *domain.Ticket) {
	p.sticky.ApplyTo(t)
	p.fallback.ApplyTo(t)
}

type draftKey struct {
	ticketID int64
	agentID  string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tickets:    make(map[int64]*domain.Ticket),
		agents:     make(map[string]domain.Agent),
		pending:    make(map[int64]*pendingChange),
		tombstones: make(map[int64]struct{}),
		drafts:     make(map[draftKey]string),
	}
}

// Get returns a copy of the ticket with id.
func (s *Store) Get(id int64) (*domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// List returns copies of every active ticket ordered by id.
func (s *Store) List() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put inserts or replaces a ticket. Tombstoned ids are ignored.
func (s *Store) Put(t *domain.Ticket) bool {
	if t == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dead := s.tombstones[t.ID]; dead {
		return false
	}
	s.tickets[t.ID] = t.Clone()
	return true
}

// Remove drops a ticket permanently. The id is tombstoned so a later refresh
// cannot bring a merged-away ticket back.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.tickets[id]
	delete(s.tickets, id)
	delete(s.pending, id)
	s.tombstones[id] = struct{}{}
	for key := range s.drafts {
		if key.ticketID == id {
			delete(s.drafts, key)
		}
	}
	return existed
}

// MarkLocal flags a ticket whose latest change has not reached the backend.
func (s *Store) MarkLocal(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return
	}
	s.pendingFor(id).at = t.UpdatedAt
}

// PutLocal stores after as a change the backend has not recorded. What after
// adds over before is kept and laid over later backend copies, for as long as
// keep allows.
func (s *Store) PutLocal(before, after *domain.Ticket, keep Retention) bool {
	if after == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dead := s.tombstones[after.ID]; dead {
		return false
	}
	s.tickets[after.ID] = after.Clone()
	p := s.pendingFor(after.ID)
	facts := domain.Additions(before, after)
	if keep == Always {
		p.sticky = p.sticky.Union(facts)
	} else {
		p.fallback = p.fallback.Union(facts)
	}
	p.at = after.UpdatedAt
	return true
}

// Confirm stores the backend's canonical copy of a ticket after a command
// succeeded remotely. Pending local facts still present on local, the
// command's local result, are laid over it. The ticket stays flagged local
// while any remain. It returns the stored ticket.
func (s *Store) Confirm(canonical, local *domain.Ticket) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := canonical.Clone()
	if p, ok := s.pending[canonical.ID]; ok {
		if local != nil {
			p.sticky = p.sticky.Within(local)
			p.fallback = p.fallback.Within(local)
		}
		p.applyTo(stored)
		if p.empty() {
			delete(s.pending, canonical.ID)
		}
	}
	if _, dead := s.tombstones[stored.ID]; !dead {
		s.tickets[stored.ID] = stored
	}
	return stored.Clone()
}

// ClearLocal drops every pending local change of a ticket.
func (s *Store) ClearLocal(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// IsLocal reports whether the ticket carries unconfirmed local changes.
func (s *Store) IsLocal(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[id]
	return ok
}

// ReplaceTickets swaps the ticket collection for a refreshed list and returns
// the number of tickets in the store afterwards.
//
// A ticket with pending local changes keeps its local version while the
// listed copy is older than the latest local change. Once the backend has
// caught up its copy wins, with the facts kept Always laid over it, and the
// local flag is dropped when nothing is left to carry. Provisional tickets
// are always kept, tombstoned ids are dropped and drafts are never touched.
func (s *Store) ReplaceTickets(incoming []domain.Ticket) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[int64]*domain.Ticket, len(incoming))
	listed := make(map[int64]struct{}, len(incoming))
	for i := range incoming {
		t := incoming[i].Clone()
		if _, dead := s.tombstones[t.ID]; dead {
			continue
		}
		listed[t.ID] = struct{}{}
		p, pending := s.pending[t.ID]
		if !pending {
			next[t.ID] = t
			continue
		}
		local, ok := s.tickets[t.ID]
		if ok && t.UpdatedAt.Before(p.at) {
			next[t.ID] = local
			continue
		}
		p.fallback = domain.LocalFacts{}
		p.applyTo(t)
		if p.empty() {
			delete(s.pending, t.ID)
		}
		next[t.ID] = t
	}
	for id := range s.pending {
		if _, ok := listed[id]; ok {
			continue
		}
		if local, ok := s.tickets[id]; ok {
			next[id] = local
		}
	}
	for id, t := range s.tickets {
		if t.IsProvisional() {
			next[id] = t
		}
	}
	s.tickets = next
	return len(next)
}

// NextID reserves a provisional id for a locally created ticket. Provisional
// ids count down from -1.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLocal--
	return s.lastLocal
}

func (s *Store) pendingFor(id int64) *pendingChange {
	p, ok := s.pending[id]
	if !ok {
		p = &pendingChange{}
		s.pending[id] = p
	}
	return p
}

// Agent returns the agent with id.
func (s *Store) Agent(id string) (domain.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	return a, ok
}

// Agents returns every known agent ordered by id.
func (s *Store) Agents() []domain.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReplaceAgents swaps the agent directory.
func (s *Store) ReplaceAgents(agents []domain.Agent) {
	next := make(map[string]domain.Agent, len(agents))
	for _, a := range agents {
		next[a.ID] = a
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = next
}

// SaveDraft keeps an agent's uncommitted reply for a ticket.
func (s *Store) SaveDraft(ticketID int64, agentID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := draftKey{ticketID: ticketID, agentID: agentID}
	if text == "" {
		delete(s.drafts, key)
		return
	}
	s.drafts[key] = text
}

// Draft returns the agent's uncommitted reply for a ticket.
func (s *Store) Draft(ticketID int64, agentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.drafts[draftKey{ticketID: ticketID, agentID: agentID}]
	return text, ok
}

// DiscardDraft drops a draft once its content has been sent.
func (s *Store) DiscardDraft(ticketID int64, agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey{ticketID: ticketID, agentID: agentID})
}
