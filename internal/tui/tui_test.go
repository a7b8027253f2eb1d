package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
	"github.com/jlbmaritime/hotspotctl/wifi/mock"
)

type fakeDispatcher struct {
	cmds []workflow.Command
	err  error
}

func (d *fakeDispatcher) Dispatch(cmd workflow.Command) error {
	d.cmds = append(d.cmds, cmd)
	return d.err
}

func (d *fakeDispatcher) Busy(string) bool { return false }

// homeCafe is connected to the saved network Home; Office is saved but out
// of range, Cafe is secured and Library is open.
func homeCafe() *mock.Backend {
	return &mock.Backend{
		Visible: []wifi.Network{
			{SSID: "Home", Signal: 80, Security: "Secured"},
			{SSID: "Cafe", Signal: 55, Security: "Secured"},
			{SSID: "Library", Signal: 30, Security: "--"},
		},
		SavedNetworks: []wifi.Network{{SSID: "Home"}, {SSID: "Office"}},
		Secrets:       map[string]string{"Cafe": "latte"},
		CurrentSSID:   "Home",
		IP:            "10.0.0.2",
	}
}

func loadState(t *testing.T, b *mock.Backend) reconcile.State {
	t.Helper()
	rec := reconcile.New(b, nil)
	_ = rec.Load(context.Background())
	return rec.State()
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(s *Stack, text string) {
	for _, r := range text {
		drain(s, s.updateTop(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}

// collect runs cmd and returns the messages it produces. Commands that do
// not return promptly, such as ticks, are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// drain feeds the output of cmd back into the stack until nothing is left.
// It reports whether the program asked to quit.
func drain(s *Stack, cmd tea.Cmd) (quit bool) {
	queue := collect(cmd)
	for i := 0; i < 100 && len(queue) > 0; i++ {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		_, next := s.Update(msg)
		queue = append(queue, collect(next)...)
	}
	return quit
}

// press sends a key to the stack and processes the resulting commands.
func press(s *Stack, k string) bool {
	_, cmd := s.Update(keyMsg(k))
	return drain(s, cmd)
}

func newTestStack(t *testing.T, d Dispatcher, state reconcile.State) (*Stack, *NetworksModel) {
	t.Helper()
	networks := NewNetworksModel()
	s := NewStack(d, networks)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(StateMsg{state})
	return s, networks
}

func selectSSID(t *testing.T, m *NetworksModel, ssid string) {
	t.Helper()
	for i, item := range m.list.Items() {
		if item.(networkItem).SSID == ssid {
			m.list.Select(i)
			return
		}
	}
	require.Failf(t, "network not listed", "%q", ssid)
}

// pump feeds controller events into the stack until done returns true.
func pump(t *testing.T, s *Stack, events <-chan workflow.Event, done func(workflow.Event) bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-events:
			_, cmd := s.Update(EventMsg{e})
			drain(s, cmd)
			if done(e) {
				return
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for workflow event")
		}
	}
}
