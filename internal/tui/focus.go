package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Focusable is a dialog element that can receive keyboard focus.
type Focusable interface {
	Focus() tea.Cmd
	Blur()
	// Update is called with messages while the element is focused.
	Update(msg tea.Msg) (Focusable, tea.Cmd)
	View() string
}

// FocusManager cycles focus through a fixed ring of elements.
type FocusManager struct {
	items []Focusable
	focus int
}

// NewFocusManager creates a new focus manager with the given items.
func NewFocusManager(items ...Focusable) *FocusManager {
	return &FocusManager{items: items}
}

// Focus focuses the first element.
func (m *FocusManager) Focus() tea.Cmd {
	return m.SetFocus(0)
}

// Update passes the message to the focused element.
func (m *FocusManager) Update(msg tea.Msg) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	item, cmd := m.items[m.focus].Update(msg)
	m.items[m.focus] = item
	return cmd
}

// Next moves focus forward, wrapping at the end.
func (m *FocusManager) Next() tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	return m.SetFocus((m.focus + 1) % len(m.items))
}

// Prev moves focus backward, wrapping at the start.
func (m *FocusManager) Prev() tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	return m.SetFocus((m.focus - 1 + len(m.items)) % len(m.items))
}

// Focused returns the currently focused element.
func (m *FocusManager) Focused() Focusable {
	if len(m.items) == 0 {
		return nil
	}
	return m.items[m.focus]
}

// SetFocus moves focus to the item at index.
func (m *FocusManager) SetFocus(index int) tea.Cmd {
	if index < 0 || index >= len(m.items) {
		return nil
	}
	m.items[m.focus].Blur()
	m.focus = index
	return m.items[m.focus].Focus()
}

// Items returns the managed elements in focus order.
func (m *FocusManager) Items() []Focusable {
	return m.items
}
