package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/reconcile"
	"github.com/spec-kit/support-console/internal/store"
)

// Source is the backend the poller refreshes from.
type Source interface {
	GetTickets(ctx context.Context, query reconcile.TicketQuery) ([]domain.Ticket, error)
	GetAgents(ctx context.Context) ([]domain.Agent, error)
}

// PollRecorder observes refresh results.
type PollRecorder interface {
	ObservePoll(result string, stored int)
}

// Poller periodically replaces the store's ticket and agent lists. Only
// list-level collections are replaced; drafts and tickets with unconfirmed
// local changes survive a refresh.
type Poller struct {
	source   Source
	store    *store.Store
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	recorder PollRecorder

	generation atomic.Uint64
	applyMu    sync.Mutex
}

// PollerConfig bundles poller collaborators.
type PollerConfig struct {
	Source   Source
	Store    *store.Store
	Interval time.Duration
	Timeout  time.Duration
	Logger   *zap.Logger
	Recorder PollRecorder
}

// NewPoller builds a poller.
func NewPoller(cfg PollerConfig) *Poller {
	p := &Poller{
		source:   cfg.Source,
		store:    cfg.Store,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
	if p.interval <= 0 {
		p.interval = time.Minute
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.refreshLogged(ctx)
		}
	}
}

func (p *Poller) refreshLogged(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil {
		p.logger.Warn("refresh failed; keeping local state", zap.Error(err))
	}
}

// Refresh fetches both lists and applies them unless a newer refresh started
// in the meantime. It reports whether the result was applied.
func (p *Poller) Refresh(ctx context.Context) (bool, error) {
	gen := p.generation.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tickets, err := p.source.GetTickets(fetchCtx, reconcile.TicketQuery{})
	if err != nil {
		p.observe("error", -1)
		return false, err
	}
	agents, agentsErr := p.source.GetAgents(fetchCtx)

	p.applyMu.Lock()
	defer p.applyMu.Unlock()
	if p.generation.Load() != gen {
		p.logger.Debug("discarding superseded refresh", zap.Uint64("generation", gen))
		p.observe("superseded", -1)
		return false, nil
	}

	stored := p.store.ReplaceTickets(tickets)
	if agentsErr != nil {
		p.logger.Warn("agent refresh failed; keeping previous agents", zap.Error(agentsErr))
	} else {
		p.store.ReplaceAgents(agents)
	}
	p.observe("ok", stored)
	p.logger.Debug("refresh applied", zap.Int("tickets", stored), zap.Int("agents", len(agents)))
	return true, nil
}

func (p *Poller) observe(result string, stored int) {
	if p.recorder != nil {
		p.recorder.ObservePoll(result, stored)
	}
}
