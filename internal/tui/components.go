package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func focusedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
}

func blurredStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
}

// --- TextInput ---

// TextInput adapts a textinput.Model to the Focusable interface.
type TextInput struct {
	Model textinput.Model
	label string

	OnFocus func(*textinput.Model)
	OnBlur  func(*textinput.Model)
}

// NewTextInput returns a labelled text input.
func NewTextInput(label string, charLimit, width int) *TextInput {
	ti := textinput.New()
	ti.CharLimit = charLimit
	ti.Width = width
	return &TextInput{Model: ti, label: label}
}

func (t *TextInput) Focus() tea.Cmd {
	if t.OnFocus != nil {
		t.OnFocus(&t.Model)
	}
	return t.Model.Focus()
}

func (t *TextInput) Blur() {
	if t.OnBlur != nil {
		t.OnBlur(&t.Model)
	}
	t.Model.Blur()
}

func (t *TextInput) Update(msg tea.Msg) (Focusable, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t *TextInput) View() string {
	style := blurredStyle()
	if t.Model.Focused() {
		style = focusedStyle()
	}
	return style.Render(t.label) + "\n" + t.Model.View()
}

// Value returns the current input.
func (t *TextInput) Value() string {
	return t.Model.Value()
}

// --- Checkbox ---

// Checkbox is a toggle; OnToggle runs after every change.
type Checkbox struct {
	label   string
	checked bool
	focused bool

	OnToggle func(checked bool)
}

func NewCheckbox(label string, checked bool) *Checkbox {
	return &Checkbox{
		label:   label,
		checked: checked,
	}
}

func (c *Checkbox) Focus() tea.Cmd {
	c.focused = true
	return nil
}

func (c *Checkbox) Blur() {
	c.focused = false
}

func (c *Checkbox) Update(msg tea.Msg) (Focusable, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", " ":
			c.checked = !c.checked
			if c.OnToggle != nil {
				c.OnToggle(c.checked)
			}
		}
	}
	return c, nil
}

func (c *Checkbox) View() string {
	box := "[ ]"
	if c.checked {
		box = "[x]"
	}
	if c.focused {
		return focusedStyle().Render(box + " " + c.label)
	}
	return blurredStyle().Render(box + " " + c.label)
}

func (c *Checkbox) Checked() bool {
	return c.checked
}

// --- ButtonGroup ---

// ButtonGroup is a row of buttons; enter runs action with the selected index.
type ButtonGroup struct {
	buttons  []string
	selected int
	focused  bool
	disabled bool
	action   func(int) tea.Cmd
}

func NewButtonGroup(buttons []string, action func(int) tea.Cmd) *ButtonGroup {
	return &ButtonGroup{
		buttons: buttons,
		action:  action,
	}
}

func (b *ButtonGroup) Focus() tea.Cmd {
	b.focused = true
	return nil
}

func (b *ButtonGroup) Blur() {
	b.focused = false
}

// SetDisabled greys out the group and ignores enter.
func (b *ButtonGroup) SetDisabled(disabled bool) {
	b.disabled = disabled
}

func (b *ButtonGroup) Update(msg tea.Msg) (Focusable, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(b.buttons) == 0 {
		return b, nil
	}
	switch key.String() {
	case "right", "l":
		b.selected = (b.selected + 1) % len(b.buttons)
	case "left", "h":
		b.selected = (b.selected - 1 + len(b.buttons)) % len(b.buttons)
	case "enter":
		if b.action != nil && !b.disabled {
			return b, b.action(b.selected)
		}
	}
	return b, nil
}

func (b *ButtonGroup) View() string {
	var s strings.Builder
	for i, label := range b.buttons {
		style := blurredStyle()
		switch {
		case b.disabled:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Disabled)
		case b.focused && i == b.selected:
			style = focusedStyle()
		}
		s.WriteString(style.Render("[ " + label + " ]"))
		s.WriteString("  ")
	}
	return s.String()
}

func (b *ButtonGroup) Selected() int {
	return b.selected
}
