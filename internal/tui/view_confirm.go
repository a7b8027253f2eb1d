package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmRequestMsg asks the stack to show a yes/no dialog. The answer is
// sent on reply exactly once.
type confirmRequestMsg struct {
	prompt string
	reply  chan<- bool
}

// dialogConfirmer implements workflow.Confirmer by showing a ConfirmModel.
type dialogConfirmer struct {
	send func(tea.Msg)
}

func (d dialogConfirmer) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	d.send(confirmRequestMsg{prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// ConfirmModel is a centered yes/no dialog.
type ConfirmModel struct {
	prompt   string
	reply    chan<- bool
	answered bool
	buttons  *ButtonGroup

	width, height int
}

func NewConfirmModel(prompt string, reply chan<- bool) *ConfirmModel {
	m := &ConfirmModel{prompt: prompt, reply: reply}
	m.buttons = NewButtonGroup([]string{"Yes", "No"}, func(index int) tea.Cmd {
		return m.answer(index == 0)
	})
	m.buttons.Focus()
	return m
}

func (m *ConfirmModel) answer(ok bool) tea.Cmd {
	if !m.answered {
		m.answered = true
		m.reply <- ok
	}
	return func() tea.Msg { return removeMsg{m} }
}

func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m *ConfirmModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			return m, m.answer(true)
		case "n", "N", "q", "esc":
			return m, m.answer(false)
		}
		_, cmd := m.buttons.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ConfirmModel) View() string {
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(m.prompt)
	body := lipgloss.JoinVertical(lipgloss.Center, question, "", m.buttons.View())
	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		BorderForeground(CurrentTheme.Primary).
		Render(body)
	if m.width == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, dialog)
}
