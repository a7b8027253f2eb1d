package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTheme(t *testing.T) {
	tomlData := `
		Primary = "#FF0000"
		Subtle = ["#00FF00", "#00EE00"]
		SignalHigh = "#008000"
	`

	loadedTheme, err := LoadTheme(strings.NewReader(tomlData))
	require.NoError(t, err)

	assert.Equal(t, Color{lipgloss.Color("#FF0000")}, loadedTheme.Primary)

	adaptiveColor, ok := loadedTheme.Subtle.TerminalColor.(lipgloss.AdaptiveColor)
	require.True(t, ok, "Subtle should be an AdaptiveColor")
	assert.Equal(t, "#00FF00", adaptiveColor.Light)
	assert.Equal(t, "#00EE00", adaptiveColor.Dark)

	// Colors missing from the file keep their defaults.
	assert.Equal(t, NewDefaultTheme().Error, loadedTheme.Error)
}

func TestLoadTheme_NilReader(t *testing.T) {
	_, err := LoadTheme(nil)
	assert.Error(t, err)
}

func TestLoadTheme_InvalidToml(t *testing.T) {
	_, err := LoadTheme(strings.NewReader(`Primary = `))
	assert.Error(t, err)
}

func TestLoadTheme_BadAdaptiveColor(t *testing.T) {
	_, err := LoadTheme(strings.NewReader(`Primary = ["#000000"]`))
	assert.Error(t, err)
}

func TestLoadThemeFile(t *testing.T) {
	defer func() { CurrentTheme = NewDefaultTheme() }()

	require.NoError(t, LoadThemeFile(""))
	assert.Equal(t, NewDefaultTheme(), CurrentTheme)

	path := filepath.Join(t.TempDir(), "theme.toml")
	require.NoError(t, os.WriteFile(path, []byte(`Border = "#123456"`), 0o644))
	require.NoError(t, LoadThemeFile(path))
	assert.Equal(t, Color{lipgloss.Color("#123456")}, CurrentTheme.Border)

	assert.Error(t, LoadThemeFile(filepath.Join(t.TempDir(), "missing.toml")))
}
