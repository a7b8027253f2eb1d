package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	applog "github.com/jlbmaritime/hotspotctl/internal/log"
)

// LogViewModel shows the latest application log records.
type LogViewModel struct {
	logs func() []slog.Record
}

// NewLogViewModel reads from the default application logger.
func NewLogViewModel() *LogViewModel {
	return &LogViewModel{logs: applog.Logs}
}

func (m *LogViewModel) Init() tea.Cmd {
	return nil
}

func (m *LogViewModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "l":
			return m, pop
		}
	}
	return m, nil
}

func (m *LogViewModel) View() string {
	var s strings.Builder
	s.WriteString("Latest logs (press 'q' to return):\n\n")

	for _, r := range m.logs() {
		var style lipgloss.Style
		switch {
		case r.Level >= slog.LevelError:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
		case r.Level <= slog.LevelDebug:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Subtle)
		default:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
		}
		line := fmt.Sprintf("%s [%s] %s", r.Time.Format("15:04:05"), r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			line += fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())
			return true
		})
		s.WriteString(style.Render(line))
		s.WriteString("\n")
	}
	return lipgloss.NewStyle().Margin(1, 0).Render(s.String())
}
