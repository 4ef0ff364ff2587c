package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/support-console/internal/clock"
)

// ActionGuard admits an action key at most once within its window.
type ActionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// MemoryGuard is an in-process ActionGuard.
type MemoryGuard struct {
	mu     sync.Mutex
	clock  clock.Clock
	window time.Duration
	seen   map[string]time.Time
}

// NewMemoryGuard returns a guard that rejects repeats of a key for window.
func NewMemoryGuard(clk clock.Clock, window time.Duration) *MemoryGuard {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryGuard{clock: clk, window: window, seen: make(map[string]time.Time)}
}

// Acquire reports whether key was free and claims it.
func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	for k, exp := range g.seen {
		if !now.Before(exp) {
			delete(g.seen, k)
		}
	}
	if _, held := g.seen[key]; held {
		return false, nil
	}
	g.seen[key] = now.Add(g.window)
	return true, nil
}
