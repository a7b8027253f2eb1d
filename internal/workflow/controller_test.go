package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/wifi"
	"github.com/jlbmaritime/hotspotctl/wifi/mock"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) sink(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) last(slot string) (Event, bool) {
	events := r.all()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Slot == slot {
			return events[i], true
		}
	}
	return Event{}, false
}

func (r *recorder) statuses(slot string) []Status {
	var out []Status
	for _, e := range r.all() {
		if e.Slot == slot {
			out = append(out, e.Action.Status)
		}
	}
	return out
}

// homeCafe is connected to the saved network Home with Cafe visible.
func homeCafe() *mock.Backend {
	return &mock.Backend{
		Visible: []wifi.Network{
			{SSID: "Home", Signal: 80, Security: "Secured"},
			{SSID: "Cafe", Signal: 55, Security: "Secured"},
		},
		SavedNetworks: []wifi.Network{{SSID: "Home"}, {SSID: "Office"}},
		Secrets:       map[string]string{"Cafe": "latte"},
		CurrentSSID:   "Home",
		IP:            "10.0.0.2",
	}
}

type harness struct {
	backend *mock.Backend
	rec     *reconcile.Reconciler
	events  *recorder
	ctrl    *Controller
}

func newHarness(t *testing.T, b *mock.Backend, opts Options) *harness {
	t.Helper()
	rec := reconcile.New(b, nil)
	require.NoError(t, rec.Load(context.Background()))

	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = time.Millisecond
	}
	if opts.ModalCloseDelay == 0 {
		opts.ModalCloseDelay = time.Millisecond
	}
	events := &recorder{}
	ctrl := New(b, rec, events.sink, opts)
	t.Cleanup(ctrl.Close)
	return &harness{backend: b, rec: rec, events: events, ctrl: ctrl}
}

func (h *harness) callsSince(call string) []string {
	calls := h.backend.Calls()
	for i, c := range calls {
		if c == call {
			return calls[i+1:]
		}
	}
	return nil
}

func hasCall(calls []string, prefix string) bool {
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func TestJoinScenario(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})
	assert.Equal(t, []string{"Cafe"}, ssidsOf(h.rec.State().Available))

	require.NoError(t, h.ctrl.Dispatch(Join{SSID: "Cafe", Password: "latte"}))
	h.ctrl.Wait()

	events := h.events.all()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.CloseModal)
	assert.Equal(t, StatusSucceeded, last.Action.Status)
	assert.Equal(t, "Connected successfully", last.Action.Message)
	assert.False(t, h.ctrl.Busy(SlotModal))

	s := h.rec.State()
	assert.Equal(t, "Cafe", s.Connection.SSID)
	assert.True(t, s.IsSaved("Cafe"))
	assert.Empty(t, s.Available)
	assert.True(t, s.CanForget("Home"))
	assert.False(t, s.CanForget("Cafe"))
}

func TestJoinWrongPasswordThenRetry(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})

	require.NoError(t, h.ctrl.Dispatch(Join{SSID: "Cafe", Password: "espresso"}))
	h.ctrl.Wait()

	e, ok := h.events.last(SlotModal)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, e.Action.Status)
	assert.Equal(t, "Invalid password", e.Action.Message)
	assert.Equal(t, "Connection failed", e.Toast)
	assert.False(t, e.CloseModal)
	assert.False(t, h.ctrl.Busy(SlotModal))
	assert.Equal(t, "Home", h.rec.State().Connection.SSID)

	require.NoError(t, h.ctrl.Dispatch(Join{SSID: "Cafe", Password: "latte"}))
	h.ctrl.Wait()

	e, _ = h.events.last(SlotModal)
	assert.True(t, e.CloseModal)
	assert.Equal(t, "Cafe", h.rec.State().Connection.SSID)
}

func TestJoinTransportError(t *testing.T) {
	b := homeCafe()
	b.ConnectError = &wifi.TransportError{Op: "connect", Err: errors.New("connection refused")}
	h := newHarness(t, b, Options{})

	require.NoError(t, h.ctrl.Dispatch(Join{SSID: "Cafe", Password: "latte"}))
	h.ctrl.Wait()

	e, _ := h.events.last(SlotModal)
	assert.Equal(t, "Connection error", e.Action.Message)
	assert.Equal(t, "Connection error", e.Toast)
	assert.ErrorIs(t, e.Err, wifi.ErrTransport)
}

func TestJoinEmptySSIDIssuesNoRequest(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})

	err := h.ctrl.Dispatch(Join{SSID: "  ", Password: "x"})
	assert.ErrorIs(t, err, wifi.ErrValidation)
	h.ctrl.Wait()
	assert.False(t, hasCall(h.backend.Calls(), "connect:"))
	assert.Empty(t, h.events.all())
}

func TestConnectSaved(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{Confirmer: AlwaysConfirm})

	require.NoError(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Office"}))
	h.ctrl.Wait()

	slot := ConnectSlot("Office")
	assert.Equal(t, []Status{StatusPending, StatusSucceeded}, h.events.statuses(slot))
	e, _ := h.events.last(slot)
	assert.Equal(t, "Connected successfully", e.Action.Message)

	// The delayed refresh picked up the new association.
	after := h.callsSince("connect:Office")
	assert.True(t, hasCall(after, "current"))
	assert.True(t, hasCall(after, "saved"))
	assert.Equal(t, "Office", h.rec.State().Connection.SSID)
}

func TestConnectSavedPreconditions(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{Confirmer: AlwaysConfirm})

	assert.ErrorIs(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Cafe"}), wifi.ErrNotSaved)
	assert.ErrorIs(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Home"}), wifi.ErrAlreadyConnected)
	assert.ErrorIs(t, h.ctrl.Dispatch(ConnectSaved{}), wifi.ErrValidation)
	h.ctrl.Wait()
	assert.False(t, hasCall(h.backend.Calls(), "connect:"))
}

func TestConnectSavedDeclined(t *testing.T) {
	var prompt string
	confirm := ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return false
	})
	h := newHarness(t, homeCafe(), Options{Confirmer: confirm})

	require.NoError(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Office"}))
	h.ctrl.Wait()

	assert.Equal(t, `Connect to "Office"?`, prompt)
	assert.Equal(t, []Status{StatusCancelled}, h.events.statuses(ConnectSlot("Office")))
	assert.False(t, hasCall(h.backend.Calls(), "connect:"))
}

func TestNilConfirmerDeclines(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})
	require.NoError(t, h.ctrl.Dispatch(Forget{SSID: "Office"}))
	h.ctrl.Wait()
	assert.False(t, hasCall(h.backend.Calls(), "forget:"))
}

func TestConnectSavedApplicationErrorWithoutMessage(t *testing.T) {
	b := homeCafe()
	b.ConnectError = &wifi.ApplicationError{Op: "connect"}
	h := newHarness(t, b, Options{Confirmer: AlwaysConfirm})

	require.NoError(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Office"}))
	h.ctrl.Wait()

	e, _ := h.events.last(ConnectSlot("Office"))
	assert.Equal(t, StatusFailed, e.Action.Status)
	assert.Equal(t, "Connection failed", e.Toast)
}

func TestForget(t *testing.T) {
	var prompt string
	confirm := ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return true
	})
	h := newHarness(t, homeCafe(), Options{Confirmer: confirm})

	require.NoError(t, h.ctrl.Dispatch(Forget{SSID: "Office"}))
	h.ctrl.Wait()

	assert.Equal(t, `Forget network "Office"?`, prompt)
	e, _ := h.events.last(ForgetSlot("Office"))
	assert.Equal(t, StatusSucceeded, e.Action.Status)
	assert.Equal(t, "Network forgotten", e.Toast)
	assert.False(t, h.rec.State().IsSaved("Office"))
}

func TestForgetActiveHasNoRequestPath(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{Confirmer: AlwaysConfirm})

	assert.ErrorIs(t, h.ctrl.Dispatch(Forget{SSID: "Home"}), wifi.ErrForgetActive)
	assert.ErrorIs(t, h.ctrl.Dispatch(Forget{SSID: "Cafe"}), wifi.ErrNotSaved)
	h.ctrl.Wait()
	assert.False(t, hasCall(h.backend.Calls(), "forget:"))
}

func TestPingBlankHost(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})

	require.NoError(t, h.ctrl.Dispatch(Ping{Host: " "}))
	h.ctrl.Wait()

	assert.Contains(t, h.backend.Calls(), "ping:8.8.8.8")
	e, _ := h.events.last(SlotPing)
	require.NotNil(t, e.Ping)
	assert.Equal(t, "8.8.8.8", e.Action.Target)
	assert.Equal(t, "Ping test complete", e.Toast)
	assert.True(t, strings.HasPrefix(e.Action.Message, "Ping test to 8.8.8.8:"))
}

func TestPingFailures(t *testing.T) {
	b := homeCafe()
	b.PingError = &wifi.ApplicationError{Op: "ping"}
	h := newHarness(t, b, Options{})

	require.NoError(t, h.ctrl.Dispatch(Ping{Host: "nowhere"}))
	h.ctrl.Wait()
	e, _ := h.events.last(SlotPing)
	assert.Equal(t, "Ping test failed", e.Toast)
	assert.True(t, strings.HasPrefix(e.Action.Message, "Ping test failed:\n\n"))

	b.PingError = &wifi.TransportError{Op: "ping", Err: errors.New("timeout")}
	require.NoError(t, h.ctrl.Dispatch(Ping{Host: "nowhere"}))
	h.ctrl.Wait()
	e, _ = h.events.last(SlotPing)
	assert.Equal(t, "Ping test error", e.Toast)
	assert.Nil(t, e.Ping)
}

func TestRescanAndDiagnose(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{})

	require.NoError(t, h.ctrl.Dispatch(Rescan{}))
	require.NoError(t, h.ctrl.Dispatch(Diagnose{}))
	h.ctrl.Wait()

	e, _ := h.events.last(SlotScan)
	assert.Equal(t, "Scan complete", e.Toast)
	assert.Contains(t, h.backend.Calls(), "rescan")

	e, _ = h.events.last(SlotDiagnose)
	require.NotNil(t, e.Diagnostics)
	assert.Contains(t, e.Action.Message, "Gateway:")
}

func TestSlotRejectsWhilePending(t *testing.T) {
	b := homeCafe()
	h := newHarness(t, b, Options{})
	b.ActionSleep = 50 * time.Millisecond

	require.NoError(t, h.ctrl.Dispatch(Ping{}))
	assert.True(t, h.ctrl.Busy(SlotPing))
	assert.ErrorIs(t, h.ctrl.Dispatch(Ping{Host: "example.com"}), ErrBusy)

	// Different slots run concurrently.
	require.NoError(t, h.ctrl.Dispatch(Rescan{}))

	h.ctrl.Wait()
	assert.False(t, h.ctrl.Busy(SlotPing))
	assert.NoError(t, h.ctrl.Dispatch(Ping{}))
	h.ctrl.Wait()
}

func TestCloseStopsDelayedRefresh(t *testing.T) {
	h := newHarness(t, homeCafe(), Options{Confirmer: AlwaysConfirm, ReconnectDelay: time.Hour})

	require.NoError(t, h.ctrl.Dispatch(ConnectSaved{SSID: "Office"}))
	require.Eventually(t, func() bool {
		e, ok := h.events.last(ConnectSlot("Office"))
		return ok && e.Action.Status == StatusSucceeded
	}, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		h.ctrl.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	assert.False(t, hasCall(h.callsSince("connect:Office"), "current"))
	assert.ErrorIs(t, h.ctrl.Dispatch(Ping{}), ErrClosed)
}

func TestCloseWaitsForActionsDispatchedConcurrently(t *testing.T) {
	for i := 0; i < 20; i++ {
		b := homeCafe()
		h := newHarness(t, b, Options{})
		b.ActionSleep = time.Millisecond

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := h.ctrl.Dispatch(Ping{})
				if err != nil && !errors.Is(err, ErrBusy) && !errors.Is(err, ErrClosed) {
					t.Errorf("unexpected dispatch error: %v", err)
				}
			}()
		}
		h.ctrl.Close()
		assert.False(t, h.ctrl.Busy(SlotPing), "an accepted action outlived Close")
		wg.Wait()
	}
}

func ssidsOf(networks []wifi.Network) []string {
	out := make([]string, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.SSID)
	}
	return out
}
