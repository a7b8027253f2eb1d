// Package poller runs a refresh function at a fixed interval until stopped.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultInterval = 5 * time.Second

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	// SkipOverlapping drops a tick while the previous refresh is still
	// running. By default every tick starts a refresh.
	SkipOverlapping bool
	Logger          *slog.Logger
}

// Poller calls a refresh function on every tick.
type Poller struct {
	refresh func(ctx context.Context) error
	opts    Options
	logger  *slog.Logger
}

// New creates a Poller for refresh.
func New(refresh func(ctx context.Context) error, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{refresh: refresh, opts: opts, logger: logger}
}

// Handle controls a started poller.
type Handle struct {
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	running atomic.Int32
	ticks   atomic.Int64
	skipped atomic.Int64
}

// Start begins polling. The first refresh happens one interval from now.
// Polling stops when ctx is done or Stop is called.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(p.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx, h)
			}
		}
	}()
	return h
}

func (p *Poller) tick(ctx context.Context, h *Handle) {
	h.ticks.Add(1)
	if p.opts.SkipOverlapping && h.running.Load() > 0 {
		h.skipped.Add(1)
		return
	}

	h.running.Add(1)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.running.Add(-1)
		if err := p.refresh(ctx); err != nil && ctx.Err() == nil {
			p.logger.Debug("poll refresh failed", "error", err)
		}
	}()
}

// Stop cancels polling and waits for in-flight refreshes to return. It is
// safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	h.wg.Wait()
}

// Ticks returns how many ticks have fired.
func (h *Handle) Ticks() int64 { return h.ticks.Load() }

// Skipped returns how many ticks were dropped because a refresh was running.
func (h *Handle) Skipped() int64 { return h.skipped.Load() }
