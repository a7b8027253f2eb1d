package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

// PingModel runs ping tests from the device and shows the last result.
type PingModel struct {
	host    *TextInput
	pending bool
	output  string
	failed  bool
}

func NewPingModel() *PingModel {
	host := NewTextInput("Host:", 253, 40)
	host.Model.Placeholder = wifi.DefaultPingHost
	return &PingModel{host: host}
}

func (m *PingModel) Init() tea.Cmd {
	return m.host.Focus()
}

func (m *PingModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		e := msg.Event
		if e.Slot != workflow.SlotPing {
			return m, nil
		}
		m.pending = e.Action.Status == workflow.StatusPending
		m.failed = e.Action.Status == workflow.StatusFailed
		if e.Action.Status != workflow.StatusCancelled {
			m.output = e.Action.Message
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, pop
		case "enter":
			if m.pending {
				return m, nil
			}
			return m, dispatch(workflow.Ping{Host: m.host.Value()})
		}
	}
	_, cmd := m.host.Update(msg)
	return m, cmd
}

func (m *PingModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render("Ping test"))
	b.WriteString("\n\n")
	b.WriteString(m.host.View())
	b.WriteString("\n\n")
	if m.output != "" {
		style := lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
		if m.failed {
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
		}
		b.WriteString(style.Render(m.output))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("enter run · esc back"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}
