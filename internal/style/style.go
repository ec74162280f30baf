// Package style holds the named subtitle presets and the visual attributes
// shared by the ASS writer and the ffmpeg burn-in filter.
package style

import (
	"fmt"
	"strings"
)

// Name identifies a preset. The set is closed; see Names.
type Name string

const (
	Default  Name = "default"
	Bold     Name = "bold"
	Elegant  Name = "elegant"
	Cinema   Name = "cinema"
	Modern   Name = "modern"
	Minimal  Name = "minimal"
	Terminal Name = "terminal"
)

// Alignment is the horizontal placement on the bottom row.
type Alignment int

const (
	AlignLeft   Alignment = 1
	AlignCenter Alignment = 2
	AlignRight  Alignment = 3
)

// WrapStyle is the ASS WrapStyle header value.
type WrapStyle int

const (
	WrapSmart       WrapStyle = 0
	WrapEndOfLine   WrapStyle = 1
	WrapNone        WrapStyle = 2
	WrapSmartBottom WrapStyle = 3
)

// Config is one fully resolved preset.
type Config struct {
	FontName          string    `yaml:"font_name"`
	FontSize          int       `yaml:"font_size"`
	FontColor         string    `yaml:"font_color"`
	OutlineColor      string    `yaml:"outline_color"`
	ShadowColor       string    `yaml:"shadow_color"`
	BackgroundColor   string    `yaml:"background_color"`
	BackgroundOpacity float64   `yaml:"background_opacity"`
	OutlineWidth      int       `yaml:"outline_width"`
	ShadowOffset      int       `yaml:"shadow_offset"`
	Alignment         Alignment `yaml:"alignment"`
	MarginVertical    int       `yaml:"margin_vertical"`
	MarginHorizontal  int       `yaml:"margin_horizontal"`
	MaxCharsPerLine   int       `yaml:"max_chars_per_line"`
	LineSpacing       int       `yaml:"line_spacing"`
	WrapStyle         WrapStyle `yaml:"wrap_style"`
}

// font slots resolved at lookup time
const (
	fontBase = "$base"
)

// preferred font with a fallback used when it is not installed
type fontChoice struct {
	preferred string
	fallback  string
}

type preset struct {
	font fontChoice
	cfg  Config
}

var presets = map[Name]preset{
	Default: {
		font: fontChoice{preferred: fontBase},
		cfg: Config{
			FontSize: 24, FontColor: "#FFFFFF", OutlineColor: "#000000", ShadowColor: "#000000",
			BackgroundColor: "#000000", BackgroundOpacity: 0.7, OutlineWidth: 2, ShadowOffset: 1,
			Alignment: AlignCenter, MarginVertical: 30, MarginHorizontal: 20, MaxCharsPerLine: 50,
			LineSpacing: 5, WrapStyle: WrapSmart,
		},
	},
	Bold: {
		font: fontChoice{preferred: fontBase},
		cfg: Config{
			FontSize: 28, FontColor: "#FFFFFF", OutlineColor: "#000000", ShadowColor: "#000000",
			BackgroundColor: "#222222", BackgroundOpacity: 0.85, OutlineWidth: 3, ShadowOffset: 2,
			Alignment: AlignCenter, MarginVertical: 40, MarginHorizontal: 30, MaxCharsPerLine: 42,
			LineSpacing: 5, WrapStyle: WrapSmart,
		},
	},
	Elegant: {
		font: fontChoice{preferred: "Times New Roman", fallback: fontBase},
		cfg: Config{
			FontSize: 26, FontColor: "#F5F5DC", OutlineColor: "#2F2F2F", ShadowColor: "#1A1A1A",
			BackgroundColor: "#2F2F2F", BackgroundOpacity: 0.7, OutlineWidth: 1, ShadowOffset: 1,
			Alignment: AlignCenter, MarginVertical: 50, MarginHorizontal: 60, MaxCharsPerLine: 45,
			LineSpacing: 8, WrapStyle: WrapSmart,
		},
	},
	Cinema: {
		font: fontChoice{preferred: "Arial"},
		cfg: Config{
			FontSize: 32, FontColor: "#FFD700", OutlineColor: "#000000", ShadowColor: "#000000",
			BackgroundColor: "#000000", BackgroundOpacity: 0.9, OutlineWidth: 2, ShadowOffset: 3,
			Alignment: AlignCenter, MarginVertical: 30, MarginHorizontal: 20, MaxCharsPerLine: 38,
			LineSpacing: 4, WrapStyle: WrapSmartBottom,
		},
	},
	Modern: {
		font: fontChoice{preferred: "Roboto", fallback: "Arial"},
		cfg: Config{
			FontSize: 24, FontColor: "#00FF41", OutlineColor: "#1A1A1A", ShadowColor: "#0A0A0A",
			BackgroundColor: "#1A1A1A", BackgroundOpacity: 0.7, OutlineWidth: 1, ShadowOffset: 2,
			Alignment: AlignCenter, MarginVertical: 35, MarginHorizontal: 40, MaxCharsPerLine: 50,
			LineSpacing: 6, WrapStyle: WrapSmart,
		},
	},
	Minimal: {
		font: fontChoice{preferred: fontBase},
		cfg: Config{
			FontSize: 20, FontColor: "#FFFFFF", OutlineColor: "#000000", ShadowColor: "#000000",
			BackgroundColor: "#000000", BackgroundOpacity: 0.5, OutlineWidth: 0, ShadowOffset: 0,
			Alignment: AlignCenter, MarginVertical: 20, MarginHorizontal: 10, MaxCharsPerLine: 55,
			LineSpacing: 3, WrapStyle: WrapEndOfLine,
		},
	},
	Terminal: {
		font: fontChoice{preferred: "Courier New", fallback: "Monospace"},
		cfg: Config{
			FontSize: 22, FontColor: "#00FF00", OutlineColor: "#003300", ShadowColor: "#001100",
			BackgroundColor: "#000000", BackgroundOpacity: 0.8, OutlineWidth: 0, ShadowOffset: 1,
			Alignment: AlignLeft, MarginVertical: 25, MarginHorizontal: 50, MaxCharsPerLine: 60,
			LineSpacing: 2, WrapStyle: WrapEndOfLine,
		},
	},
}

// Names lists every preset in display order.
func Names() []Name {
	return []Name{Default, Bold, Elegant, Cinema, Modern, Minimal, Terminal}
}

// ParseName validates a preset name, case-insensitively.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := presets[n]; !ok {
		return Default, fmt.Errorf("unknown style %q (valid: %s)", s, joinNames())
	}
	return n, nil
}

func joinNames() string {
	names := Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// Lookup resolves a preset with the host's default fonts. Unknown names fall
// back to the default preset.
func Lookup(name string) Config {
	return NewTable(SystemFonts{}).Lookup(name)
}

// Validate checks colour syntax and numeric ranges.
func (c Config) Validate() error {
	for field, value := range map[string]string{
		"font_color":       c.FontColor,
		"outline_color":    c.OutlineColor,
		"shadow_color":     c.ShadowColor,
		"background_color": c.BackgroundColor,
	} {
		if _, err := ParseHex(value); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if c.BackgroundOpacity < 0 || c.BackgroundOpacity > 1 {
		return fmt.Errorf("background_opacity must be within [0,1], got %v", c.BackgroundOpacity)
	}
	if c.Alignment < AlignLeft || c.Alignment > AlignRight {
		return fmt.Errorf("alignment must be 1, 2 or 3, got %d", c.Alignment)
	}
	if c.WrapStyle < WrapSmart || c.WrapStyle > WrapSmartBottom {
		return fmt.Errorf("wrap_style must be 0-3, got %d", c.WrapStyle)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive, got %d", c.FontSize)
	}
	if strings.TrimSpace(c.FontName) == "" {
		return fmt.Errorf("font_name is required")
	}
	return nil
}
