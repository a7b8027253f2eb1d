package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// UnmarshalTOML accepts "#rrggbb" or ["#light", "#dark"].
func (c *Color) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		c.TerminalColor = lipgloss.Color(v)
		return nil
	case []any:
		if len(v) != 2 {
			return fmt.Errorf("adaptive color needs [light, dark], got %d values", len(v))
		}
		light, ok1 := v[0].(string)
		dark, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return errors.New("adaptive color values must be strings")
		}
		c.TerminalColor = lipgloss.AdaptiveColor{Light: light, Dark: dark}
		return nil
	}
	return fmt.Errorf("unsupported color value %v", v)
}

// themeFile mirrors Theme. A color missing from the file has a nil
// TerminalColor, so a file can override only some colors.
type themeFile struct {
	Primary    Color `toml:"Primary"`
	Subtle     Color `toml:"Subtle"`
	Success    Color `toml:"Success"`
	Error      Color `toml:"Error"`
	Normal     Color `toml:"Normal"`
	Disabled   Color `toml:"Disabled"`
	Border     Color `toml:"Border"`
	SignalHigh Color `toml:"SignalHigh"`
	SignalLow  Color `toml:"SignalLow"`
}

// LoadTheme reads a TOML theme and returns the default theme with the
// file's colors applied.
func LoadTheme(r io.Reader) (Theme, error) {
	theme := NewDefaultTheme()
	if r == nil {
		return theme, errors.New("no theme reader")
	}

	var tf themeFile
	if _, err := toml.NewDecoder(r).Decode(&tf); err != nil {
		return theme, fmt.Errorf("decoding theme: %w", err)
	}

	for _, o := range []struct {
		src Color
		dst *Color
	}{
		{tf.Primary, &theme.Primary},
		{tf.Subtle, &theme.Subtle},
		{tf.Success, &theme.Success},
		{tf.Error, &theme.Error},
		{tf.Normal, &theme.Normal},
		{tf.Disabled, &theme.Disabled},
		{tf.Border, &theme.Border},
		{tf.SignalHigh, &theme.SignalHigh},
		{tf.SignalLow, &theme.SignalLow},
	} {
		if o.src.TerminalColor != nil {
			*o.dst = o.src
		}
	}
	return theme, nil
}

// LoadThemeFile loads the theme at path into CurrentTheme. An empty path
// keeps the default theme.
func LoadThemeFile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	theme, err := LoadTheme(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	CurrentTheme = theme
	return nil
}
