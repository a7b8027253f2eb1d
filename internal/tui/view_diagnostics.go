package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jlbmaritime/hotspotctl/internal/workflow"
)

// DiagnosticsModel shows the device's interface and routing report.
type DiagnosticsModel struct {
	report string
	failed bool
}

func NewDiagnosticsModel() *DiagnosticsModel {
	return &DiagnosticsModel{report: "Running diagnostics..."}
}

func (m *DiagnosticsModel) Init() tea.Cmd {
	return nil
}

func (m *DiagnosticsModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		e := msg.Event
		if e.Slot == workflow.SlotDiagnose && e.Action.Status != workflow.StatusCancelled {
			m.report = e.Action.Message
			m.failed = e.Action.Status == workflow.StatusFailed
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, pop
		case "r":
			return m, dispatch(workflow.Diagnose{})
		}
	}
	return m, nil
}

func (m *DiagnosticsModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render("Diagnostics"))
	b.WriteString("\n\n")
	style := lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	if m.failed {
		style = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
	}
	b.WriteString(style.Render(m.report))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("r rerun · q back"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}
