package tui

import "github.com/charmbracelet/lipgloss"

// Color wraps a lipgloss.TerminalColor so it can be decoded from a theme
// file, either as a single color or as a [light, dark] pair.
type Color struct {
	lipgloss.TerminalColor
}

// Theme contains the colors for the application.
type Theme struct {
	Primary  Color
	Subtle   Color
	Success  Color
	Error    Color
	Normal   Color
	Disabled Color
	Border   Color

	SignalHigh Color
	SignalLow  Color
}

// CurrentTheme is the active theme for the application.
var CurrentTheme = NewDefaultTheme()

// NewDefaultTheme creates a new default theme.
func NewDefaultTheme() Theme {
	return Theme{
		Primary:  Color{lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#D359E3"}}, // Purple/Pink
		Subtle:   Color{lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}}, // Gray
		Success:  Color{lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#81C784"}}, // Green
		Error:    Color{lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#E57373"}}, // Red
		Normal:   Color{lipgloss.AdaptiveColor{Light: "#212121", Dark: "#FFFFFF"}}, // Black/White
		Disabled: Color{lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#424242"}}, // Lighter/Darker Gray
		Border:   Color{lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}}, // Gray

		SignalHigh: Color{lipgloss.AdaptiveColor{Light: "#00B300", Dark: "#00FF00"}},
		SignalLow:  Color{lipgloss.AdaptiveColor{Light: "#D05F00", Dark: "#BC3C00"}},
	}
}
