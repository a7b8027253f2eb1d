// Package tui is the interactive terminal front end: it renders reconciler
// snapshots and turns key presses into workflow commands.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	applog "github.com/jlbmaritime/hotspotctl/internal/log"
	"github.com/jlbmaritime/hotspotctl/internal/poller"
	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

// Config configures Run.
type Config struct {
	Backend wifi.Backend

	// PollInterval defaults to poller.DefaultInterval.
	PollInterval    time.Duration
	SkipOverlapping bool

	Logger *slog.Logger
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rec := reconcile.New(cfg.Backend, logger.With("component", "reconcile"))

	var program *tea.Program
	send := func(msg tea.Msg) { program.Send(msg) }

	ctrl := workflow.New(cfg.Backend, rec, func(e workflow.Event) { send(EventMsg{e}) }, workflow.Options{
		Confirmer: dialogConfirmer{send: send},
		Logger:    logger.With("component", "workflow"),
	})
	defer ctrl.Close()

	program = tea.NewProgram(NewStack(ctrl, NewNetworksModel()), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := rec.Subscribe(func(s reconcile.State) { send(StateMsg{s}) })
	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	logs := make(chan tea.Msg, 16)
	applog.SetOutput(logs)
	defer applog.SetOutput(nil)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case msg := <-logs:
				send(msg)
			case <-runCtx.Done():
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rec.Load(runCtx); err != nil {
			logger.Warn("initial load incomplete", "error", err)
		}
	}()

	h := poller.New(rec.Refresh, poller.Options{
		Interval:        cfg.PollInterval,
		SkipOverlapping: cfg.SkipOverlapping,
		Logger:          logger.With("component", "poller"),
	}).Start(runCtx)
	defer h.Stop()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
