// Package workflow drives user actions against the backend: reconnecting to
// saved networks, joining with a passphrase, forgetting, ping tests, rescans
// and diagnostics. Each action occupies a slot; a slot accepts one action at
// a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

var (
	ErrBusy   = errors.New("action already in progress")
	ErrClosed = errors.New("controller closed")
)

const (
	DefaultReconnectDelay  = time.Second
	DefaultModalCloseDelay = 1500 * time.Millisecond
)

// Reconciler is the part of reconcile.Reconciler the controller needs.
type Reconciler interface {
	State() reconcile.State
	RefreshCurrentConnection(ctx context.Context) error
	RefreshSavedNetworks(ctx context.Context) error
	RefreshScan(ctx context.Context, forceRescan bool) error
}

// Confirmer asks the operator to approve an action. It returns false when
// declined or when ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Options configures a Controller.
type Options struct {
	// Confirmer gates reconnects and forgets. A nil Confirmer declines them.
	Confirmer Confirmer
	// ReconnectDelay is the wait before refreshing after a saved-network
	// reconnect succeeds.
	ReconnectDelay time.Duration
	// ModalCloseDelay is the wait before the password dialog is closed after
	// a successful join.
	ModalCloseDelay time.Duration
	// PingCount is the number of echo requests per ping test.
	PingCount int
	Logger    *slog.Logger
}

// Controller runs actions asynchronously and reports them through a sink.
type Controller struct {
	backend wifi.Backend
	rec     Reconciler
	sink    func(Event)
	opts    Options
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	busy   map[string]bool
	timers map[*time.Timer]struct{}
	closed bool
}

// New creates a Controller. sink receives every event and may be called
// from several goroutines at once.
func New(b wifi.Backend, rec Reconciler, sink func(Event), opts Options) *Controller {
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.ModalCloseDelay == 0 {
		opts.ModalCloseDelay = DefaultModalCloseDelay
	}
	if opts.PingCount <= 0 {
		opts.PingCount = wifi.DefaultPingCount
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = func(Event) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend: b,
		rec:     rec,
		sink:    sink,
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		busy:    map[string]bool{},
		timers:  map[*time.Timer]struct{}{},
	}
}

// Busy reports whether slot has an action in flight.
func (c *Controller) Busy(slot string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[slot]
}

// Dispatch validates cmd against the latest snapshot and starts it. Errors
// returned here mean no request was issued.
func (c *Controller) Dispatch(cmd Command) error {
	if err := cmd.validate(c.rec.State()); err != nil {
		return err
	}
	slot := cmd.slot()
	if err := c.acquire(slot); err != nil {
		return err
	}

	a := Action{ID: uuid.New(), Kind: cmd.kind(), Target: cmd.target(), Status: StatusPending}
	c.logger.Debug("dispatch", "slot", slot, "kind", a.Kind, "target", a.Target, "id", a.ID)

	go func() {
		defer c.wg.Done()
		switch cmd := cmd.(type) {
		case ConnectSaved:
			c.connectSaved(slot, a, cmd)
		case Join:
			c.join(slot, a, cmd)
		case Forget:
			c.forget(slot, a, cmd)
		case Ping:
			c.ping(slot, a, cmd)
		case Rescan:
			c.rescan(slot, a)
		case Diagnose:
			c.diagnose(slot, a)
		default:
			c.release(slot)
		}
	}()
	return nil
}

// Wait blocks until every running action and scheduled refresh has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels running actions, drops scheduled refreshes and waits for
// goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	for t := range c.timers {
		if t.Stop() {
			c.wg.Done()
		}
		delete(c.timers, t)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// acquire marks slot busy and counts the action's goroutine in c.wg. Both
// happen under c.mu so Close never waits on a counter that is still
// growing.
func (c *Controller) acquire(slot string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.busy[slot] {
		return fmt.Errorf("%s: %w", slot, ErrBusy)
	}
	c.busy[slot] = true
	c.wg.Add(1)
	return nil
}

func (c *Controller) release(slot string) {
	c.mu.Lock()
	delete(c.busy, slot)
	c.mu.Unlock()
}

// after runs fn once d has elapsed, unless the controller is closed first.
func (c *Controller) after(d time.Duration, fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		defer c.wg.Done()
		c.mu.Lock()
		_, live := c.timers[t]
		delete(c.timers, t)
		c.mu.Unlock()
		if live {
			fn(c.ctx)
		}
	})
	c.timers[t] = struct{}{}
}

func (c *Controller) emit(slot string, a Action, fn func(*Event)) {
	e := Event{Slot: slot, Action: a}
	if fn != nil {
		fn(&e)
	}
	c.sink(e)
}

// finish releases the slot and reports the outcome.
func (c *Controller) finish(slot string, a Action, fn func(*Event)) {
	c.release(slot)
	c.emit(slot, a, fn)
}

func (c *Controller) cancelled(slot string, a Action) {
	a.Status = StatusCancelled
	c.finish(slot, a, nil)
}

func (c *Controller) refreshConnection(ctx context.Context) {
	_ = c.rec.RefreshCurrentConnection(ctx)
	_ = c.rec.RefreshSavedNetworks(ctx)
}

func (c *Controller) connectSaved(slot string, a Action, cmd ConnectSaved) {
	if !c.confirm(fmt.Sprintf("Connect to %q?", cmd.SSID)) {
		c.cancelled(slot, a)
		return
	}
	c.emit(slot, withMessage(a, "Connecting..."), func(e *Event) { e.Toast = "Connecting..." })

	_, err := c.backend.Connect(c.ctx, cmd.SSID, "")
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	if err != nil {
		c.logger.Warn("connect failed", "ssid", cmd.SSID, "error", err)
		msg := wifi.Message(err, "Connection failed", "Connection error")
		c.finish(slot, failed(a, msg), func(e *Event) {
			e.Toast = msg
			e.Err = err
		})
		return
	}

	c.logger.Info("connected", "ssid", cmd.SSID)
	c.finish(slot, succeeded(a, "Connected successfully"), func(e *Event) { e.Toast = "Connected successfully" })
	c.after(c.opts.ReconnectDelay, c.refreshConnection)
}

func (c *Controller) join(slot string, a Action, cmd Join) {
	c.emit(slot, withMessage(a, "Connecting..."), nil)

	msg, err := c.backend.Connect(c.ctx, cmd.SSID, cmd.Password)
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	if err != nil {
		c.logger.Warn("join failed", "ssid", cmd.SSID, "error", err)
		inline := wifi.Message(err, "Connection failed", "Connection error")
		toast := "Connection failed"
		if !errors.Is(err, wifi.ErrApplication) {
			toast = "Connection error"
		}
		c.finish(slot, failed(a, inline), func(e *Event) {
			e.Toast = toast
			e.Err = err
		})
		return
	}

	c.logger.Info("joined", "ssid", cmd.SSID)
	if msg == "" {
		msg = "Connected successfully"
	}
	// The dialog stays open, and the slot held, until it is closed.
	c.emit(slot, succeeded(a, msg), func(e *Event) { e.Toast = "Connected successfully" })
	c.after(c.opts.ModalCloseDelay, func(ctx context.Context) {
		c.finish(slot, succeeded(a, msg), func(e *Event) { e.CloseModal = true })
		c.refreshConnection(ctx)
	})
}

func (c *Controller) forget(slot string, a Action, cmd Forget) {
	if !c.confirm(fmt.Sprintf("Forget network %q?", cmd.SSID)) {
		c.cancelled(slot, a)
		return
	}
	c.emit(slot, withMessage(a, "Forgetting..."), nil)

	_, err := c.backend.Forget(c.ctx, cmd.SSID)
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	if err != nil {
		c.logger.Warn("forget failed", "ssid", cmd.SSID, "error", err)
		msg := wifi.Message(err, "Error forgetting network", "Error forgetting network")
		c.finish(slot, failed(a, msg), func(e *Event) {
			e.Toast = msg
			e.Err = err
		})
		return
	}

	c.logger.Info("forgot network", "ssid", cmd.SSID)
	c.finish(slot, succeeded(a, "Network forgotten"), func(e *Event) { e.Toast = "Network forgotten" })
	_ = c.rec.RefreshSavedNetworks(c.ctx)
}

func (c *Controller) ping(slot string, a Action, cmd Ping) {
	host := cmd.host()
	c.emit(slot, withMessage(a, "Running ping test..."), nil)

	res, err := c.backend.Ping(c.ctx, host, c.opts.PingCount)
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	switch {
	case err == nil:
		c.finish(slot, succeeded(a, wifi.FormatPing(res)), func(e *Event) {
			e.Toast = "Ping test complete"
			e.Ping = &res
		})
	case errors.Is(err, wifi.ErrApplication):
		c.logger.Warn("ping failed", "host", host, "error", err)
		c.finish(slot, failed(a, wifi.FormatPingFailure(res)), func(e *Event) {
			e.Toast = "Ping test failed"
			e.Ping = &res
			e.Err = err
		})
	default:
		c.logger.Warn("ping error", "host", host, "error", err)
		c.finish(slot, failed(a, "Error running ping test"), func(e *Event) {
			e.Toast = "Ping test error"
			e.Err = err
		})
	}
}

func (c *Controller) rescan(slot string, a Action) {
	c.emit(slot, withMessage(a, "Scanning..."), nil)

	err := c.rec.RefreshScan(c.ctx, true)
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	if err != nil {
		c.finish(slot, failed(a, "Scan failed"), func(e *Event) {
			e.Toast = "Scan failed"
			e.Err = err
		})
		return
	}
	c.finish(slot, succeeded(a, "Scan complete"), func(e *Event) { e.Toast = "Scan complete" })
}

func (c *Controller) diagnose(slot string, a Action) {
	c.emit(slot, withMessage(a, "Running diagnostics..."), nil)

	d, err := c.backend.Diagnostics(c.ctx)
	if errors.Is(err, context.Canceled) {
		c.cancelled(slot, a)
		return
	}
	if err != nil {
		c.logger.Warn("diagnostics failed", "error", err)
		msg := wifi.Message(err, "Error loading diagnostics", "Error loading diagnostics")
		c.finish(slot, failed(a, msg), func(e *Event) {
			e.Toast = msg
			e.Err = err
		})
		return
	}
	c.finish(slot, succeeded(a, wifi.FormatDiagnostics(d)), func(e *Event) {
		e.Toast = "Diagnostics complete"
		e.Diagnostics = &d
	})
}

func (c *Controller) confirm(prompt string) bool {
	if c.opts.Confirmer == nil {
		return false
	}
	return c.opts.Confirmer.Confirm(c.ctx, prompt)
}

func withMessage(a Action, msg string) Action {
	a.Message = msg
	return a
}

func succeeded(a Action, msg string) Action {
	a.Status = StatusSucceeded
	a.Message = msg
	return a
}

func failed(a Action, msg string) Action {
	a.Status = StatusFailed
	a.Message = msg
	return a
}
