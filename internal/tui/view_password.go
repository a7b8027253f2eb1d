package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/qrwifi"
)

// PasswordModel is the join dialog. It stays open on failure so the
// passphrase can be corrected, and closes once the controller asks it to.
type PasswordModel struct {
	focusManager  *FocusManager
	ssidInput     *TextInput
	passwordInput *TextInput
	showCheckbox  *Checkbox
	buttons       *ButtonGroup

	ssid     string
	editable bool
	security string

	// submitted is the SSID of the last join sent from this dialog and
	// action the ID the controller gave it. Events for other joins are
	// ignored.
	submitted string
	action    uuid.UUID

	pending bool
	joined  bool
	message string
	failed  bool

	width, height int
}

// NewPasswordModel returns the join dialog for ssid. With editable set the
// SSID is typed in, for networks that are not in the list.
func NewPasswordModel(ssid string, editable bool) *PasswordModel {
	m := &PasswordModel{ssid: ssid, editable: editable}

	m.ssidInput = NewTextInput("SSID:", 32, 32)
	m.ssidInput.Model.SetValue(ssid)

	m.passwordInput = NewTextInput("Passphrase:", 64, 45)
	m.passwordInput.Model.EchoMode = textinput.EchoPassword
	m.passwordInput.Model.EchoCharacter = '•'

	m.showCheckbox = NewCheckbox("Show passphrase", false)
	m.showCheckbox.OnToggle = func(checked bool) {
		if checked {
			m.passwordInput.Model.EchoMode = textinput.EchoNormal
		} else {
			m.passwordInput.Model.EchoMode = textinput.EchoPassword
		}
	}

	m.buttons = NewButtonGroup([]string{"Connect", "Cancel"}, func(index int) tea.Cmd {
		if index == 1 {
			return pop
		}
		return m.submit()
	})

	var items []Focusable
	if editable {
		items = append(items, m.ssidInput)
	}
	items = append(items, m.passwordInput, m.showCheckbox, m.buttons)
	m.focusManager = NewFocusManager(items...)
	return m
}

// WithSecurity records the advertised security, used for the share code.
func (m *PasswordModel) WithSecurity(security string) *PasswordModel {
	m.security = security
	return m
}

// SSID is the network the dialog will join.
func (m *PasswordModel) SSID() string {
	if m.editable {
		return m.ssidInput.Value()
	}
	return m.ssid
}

// Message is the inline status shown under the form.
func (m *PasswordModel) Message() string {
	return m.message
}

func (m *PasswordModel) submit() tea.Cmd {
	if m.pending || m.joined {
		return nil
	}
	m.message = ""
	m.failed = false
	m.submitted = m.SSID()
	m.action = uuid.Nil
	return dispatch(workflow.Join{SSID: m.submitted, Password: m.passwordInput.Value()})
}

func (m *PasswordModel) Init() tea.Cmd {
	return m.focusManager.Focus()
}

func (m *PasswordModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case EventMsg:
		if msg.Event.Slot == workflow.SlotModal {
			return m, m.handleEvent(msg.Event)
		}
		return m, nil
	case dispatchErrMsg:
		if _, ok := msg.cmd.(workflow.Join); ok {
			m.submitted = ""
			m.message = rejection(msg.err)
			m.failed = true
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, pop
		case "tab", "down":
			return m, m.focusManager.Next()
		case "shift+tab", "up":
			return m, m.focusManager.Prev()
		case "enter":
			if _, ok := m.focusManager.Focused().(*TextInput); ok {
				if m.focusManager.Focused() == m.passwordInput {
					return m, m.submit()
				}
				return m, m.focusManager.Next()
			}
		}
		return m, m.focusManager.Update(msg)
	}
	return m, m.focusManager.Update(msg)
}

// owns reports whether a belongs to the join this dialog submitted.
func (m *PasswordModel) owns(a workflow.Action) bool {
	if m.submitted == "" || a.Target != m.submitted {
		return false
	}
	return m.action == uuid.Nil || m.action == a.ID
}

func (m *PasswordModel) handleEvent(e workflow.Event) tea.Cmd {
	a := e.Action
	if !m.owns(a) {
		return nil
	}
	switch a.Status {
	case workflow.StatusPending:
		m.action = a.ID
		m.pending = true
		m.failed = false
		m.message = a.Message
	case workflow.StatusFailed:
		m.pending = false
		m.failed = true
		m.message = a.Message
	case workflow.StatusCancelled:
		m.pending = false
		m.message = ""
	case workflow.StatusSucceeded:
		m.pending = false
		m.joined = true
		m.failed = false
		m.message = a.Message
		if e.CloseModal {
			return func() tea.Msg { return removeMsg{m} }
		}
	}
	m.buttons.SetDisabled(m.pending || m.joined)
	return nil
}

func (m *PasswordModel) View() string {
	var b strings.Builder
	title := "Join a network"
	if !m.editable {
		title = "Join " + m.ssid
	}
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(title))
	b.WriteString("\n\n")
	for _, item := range m.focusManager.Items() {
		b.WriteString(item.View())
		b.WriteString("\n\n")
	}

	if m.message != "" {
		style := lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
		switch {
		case m.failed:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
		case m.joined:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Success)
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}

	if qr := m.shareCode(); qr != "" {
		b.WriteString("\n" + qr)
	}

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Border).
		Padding(1, 2).
		Render(strings.TrimRight(b.String(), "\n"))
	if m.width == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, dialog)
}

// shareCode renders the join QR code while the passphrase is revealed.
func (m *PasswordModel) shareCode() string {
	pw := m.passwordInput.Value()
	ssid := m.SSID()
	if !m.showCheckbox.Checked() || pw == "" || ssid == "" {
		return ""
	}
	sec := qrwifi.ParseSecurity(m.security)
	if sec == qrwifi.SecurityOpen {
		sec = qrwifi.SecurityWPA
	}
	qr, err := qrwifi.Generate(ssid, pw, sec, m.editable)
	if err != nil {
		return ""
	}
	return qr
}
