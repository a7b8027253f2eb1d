package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jlbmaritime/hotspotctl/internal/helpers"
	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

// networkItem is one row of the network list.
type networkItem struct {
	wifi.Network
}

func (i networkItem) Title() string { return i.SSID }

func (i networkItem) Description() string {
	if i.Signal > 0 {
		return fmt.Sprintf("%d%%", i.Signal)
	}
	if i.IsSaved && i.LastUsed != nil {
		return helpers.FormatDuration(*i.LastUsed)
	}
	return ""
}

func (i networkItem) FilterValue() string { return i.SSID }

func (i networkItem) icon() string {
	switch {
	case i.IsSaved:
		return "★ "
	case i.IsOpen():
		return "○ "
	default:
		return "● "
	}
}

// renderConnection describes the active association. Every kind of
// disconnection renders the same way.
func renderConnection(s reconcile.State) string {
	if !s.Connection.Connected() {
		return lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("Not connected")
	}
	line := "Connected to " + lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true).Render(s.Connection.SSID)
	if s.Connection.IP != "" {
		line += " (" + s.Connection.IP + ")"
	}
	return line
}

// rowActions lists the key hints that apply to the selected network.
func rowActions(s reconcile.State, n wifi.Network) []string {
	var actions []string
	switch {
	case s.IsCurrent(n.SSID):
	case s.CanReconnect(n.SSID):
		actions = append(actions, "c connect")
	default:
		actions = append(actions, "c join")
	}
	if s.CanForget(n.SSID) {
		actions = append(actions, "f forget")
	}
	return actions
}

// signalColor blends from SignalLow to SignalHigh by signal percentage.
func signalColor(signal int) lipgloss.TerminalColor {
	low, okLow := hexOf(CurrentTheme.SignalLow)
	high, okHigh := hexOf(CurrentTheme.SignalHigh)
	if !okLow || !okHigh {
		return CurrentTheme.SignalHigh
	}
	start, err := colorful.Hex(low)
	if err != nil {
		return CurrentTheme.SignalHigh
	}
	end, err := colorful.Hex(high)
	if err != nil {
		return CurrentTheme.SignalHigh
	}
	p := float64(min(max(signal, 0), 100)) / 100.0
	return lipgloss.Color(start.BlendRgb(end, p).Hex())
}

// hexOf resolves a theme color to a hex string for the current background.
func hexOf(c Color) (string, bool) {
	switch tc := c.TerminalColor.(type) {
	case lipgloss.AdaptiveColor:
		if lipgloss.HasDarkBackground() {
			return tc.Dark, true
		}
		return tc.Light, true
	case lipgloss.Color:
		s := string(tc)
		return s, strings.HasPrefix(s, "#")
	}
	return "", false
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
