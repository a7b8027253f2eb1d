package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

func TestNetworksKeyBindings(t *testing.T) {
	tests := []struct {
		ssid string
		key  string
		want []workflow.Command
	}{
		{"Home", "c", nil},
		{"Home", "f", nil},
		{"Office", "c", []workflow.Command{workflow.ConnectSaved{SSID: "Office"}}},
		{"Office", "enter", []workflow.Command{workflow.ConnectSaved{SSID: "Office"}}},
		{"Office", "f", []workflow.Command{workflow.Forget{SSID: "Office"}}},
		{"Cafe", "f", nil},
	}
	for _, tt := range tests {
		t.Run(tt.ssid+"/"+tt.key, func(t *testing.T) {
			d := &fakeDispatcher{}
			s, networks := newTestStack(t, d, loadState(t, homeCafe()))
			selectSSID(t, networks, tt.ssid)

			press(s, tt.key)
			assert.Equal(t, tt.want, d.cmds)
			assert.Same(t, networks, s.Top())
		})
	}
}

func TestNetworksScanResultOpensDialog(t *testing.T) {
	b := homeCafe()
	b.Visible = append(b.Visible, wifi.Network{SSID: "Guest", Signal: 50})

	for _, ssid := range []string{"Cafe", "Library", "Guest"} {
		t.Run(ssid, func(t *testing.T) {
			d := &fakeDispatcher{}
			s, networks := newTestStack(t, d, loadState(t, b))
			selectSSID(t, networks, ssid)

			press(s, "enter")
			require.IsType(t, &PasswordModel{}, s.Top())
			assert.Equal(t, ssid, s.Top().(*PasswordModel).SSID())
			assert.Empty(t, d.cmds)

			press(s, "esc")
			assert.Same(t, networks, s.Top())
			assert.Empty(t, d.cmds)
		})
	}
}

func TestNetworksOpenNetworkJoinsWithBlankPassphrase(t *testing.T) {
	d := &fakeDispatcher{}
	s, networks := newTestStack(t, d, loadState(t, homeCafe()))
	selectSSID(t, networks, "Library")

	press(s, "c")
	require.IsType(t, &PasswordModel{}, s.Top())
	press(s, "enter")
	assert.Equal(t, []workflow.Command{workflow.Join{SSID: "Library"}}, d.cmds)
}

func TestNetworksScreens(t *testing.T) {
	tests := []struct {
		key  string
		want Component
		cmds []workflow.Command
	}{
		{"n", &PasswordModel{}, nil},
		{"p", &PingModel{}, nil},
		{"d", &DiagnosticsModel{}, []workflow.Command{workflow.Diagnose{}}},
		{"l", &LogViewModel{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d := &fakeDispatcher{}
			s, _ := newTestStack(t, d, loadState(t, homeCafe()))
			press(s, tt.key)
			assert.IsType(t, tt.want, s.Top())
			assert.Equal(t, tt.cmds, d.cmds)
		})
	}
}

func TestNetworksQuit(t *testing.T) {
	s, _ := newTestStack(t, &fakeDispatcher{}, loadState(t, homeCafe()))
	assert.True(t, press(s, "q"))
}

func TestNetworksKeepsSelectionAcrossUpdates(t *testing.T) {
	b := homeCafe()
	s, networks := newTestStack(t, &fakeDispatcher{}, loadState(t, b))
	selectSSID(t, networks, "Library")

	b.Visible = append([]wifi.Network{{SSID: "Airport", Signal: 90}}, b.Visible...)
	s.Update(StateMsg{loadState(t, b)})

	selected, ok := networks.Selected()
	require.True(t, ok)
	assert.Equal(t, "Library", selected.SSID)
}

func TestNetworksView(t *testing.T) {
	_, networks := newTestStack(t, &fakeDispatcher{}, loadState(t, homeCafe()))
	view := networks.View()

	assert.Contains(t, view, "Connected to")
	assert.Contains(t, view, "10.0.0.2")
	assert.Contains(t, view, "(Connected)")
	for _, ssid := range []string{"Home", "Office", "Cafe", "Library"} {
		assert.Contains(t, view, ssid)
	}
}

func TestNetworksPlaceholders(t *testing.T) {
	b := homeCafe()
	b.ScanError = &wifi.TransportError{Op: "scan", Status: 500}
	b.SavedError = &wifi.TransportError{Op: "saved", Status: 500}
	b.CurrentSSID = ""

	_, networks := newTestStack(t, &fakeDispatcher{}, loadState(t, b))
	view := networks.View()
	assert.Contains(t, view, "Error loading networks")
	assert.Contains(t, view, "Error loading saved networks")
	assert.Contains(t, view, "Not connected")
}

func TestDisconnectedStatesRenderAlike(t *testing.T) {
	idle := homeCafe()
	idle.CurrentSSID = ""

	failing := homeCafe()
	failing.CurrentError = &wifi.TransportError{Op: "current", Err: context.DeadlineExceeded}

	assert.Equal(t, renderConnection(loadState(t, idle)), renderConnection(loadState(t, failing)))
}

func TestForgetThroughConfirmDialog(t *testing.T) {
	b := homeCafe()
	rec := reconcile.New(b, nil)
	require.NoError(t, rec.Load(context.Background()))

	prompts := make(chan tea.Msg, 1)
	events := make(chan workflow.Event, 32)
	ctrl := workflow.New(b, rec, func(e workflow.Event) { events <- e }, workflow.Options{
		Confirmer: dialogConfirmer{send: func(msg tea.Msg) { prompts <- msg }},
	})
	t.Cleanup(ctrl.Close)

	s, networks := newTestStack(t, ctrl, rec.State())
	selectSSID(t, networks, "Office")
	press(s, "f")

	select {
	case msg := <-prompts:
		s.Update(msg)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no confirmation requested")
	}
	require.IsType(t, &ConfirmModel{}, s.Top())
	press(s, "y")

	pump(t, s, events, func(e workflow.Event) bool { return e.Action.Status.Done() })
	ctrl.Wait()

	assert.Equal(t, "Network forgotten", s.Toast())
	assert.Contains(t, b.Calls(), "forget:Office")
	assert.False(t, rec.State().IsSaved("Office"))
}
