package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// override mirrors Config with optional fields so a style file only has to
// name the attributes it changes.
type override struct {
	Base              string     `yaml:"base"`
	FontName          *string    `yaml:"font_name"`
	FontSize          *int       `yaml:"font_size"`
	FontColor         *string    `yaml:"font_color"`
	OutlineColor      *string    `yaml:"outline_color"`
	ShadowColor       *string    `yaml:"shadow_color"`
	BackgroundColor   *string    `yaml:"background_color"`
	BackgroundOpacity *float64   `yaml:"background_opacity"`
	OutlineWidth      *int       `yaml:"outline_width"`
	ShadowOffset      *int       `yaml:"shadow_offset"`
	Alignment         *Alignment `yaml:"alignment"`
	MarginVertical    *int       `yaml:"margin_vertical"`
	MarginHorizontal  *int       `yaml:"margin_horizontal"`
	MaxCharsPerLine   *int       `yaml:"max_chars_per_line"`
	LineSpacing       *int       `yaml:"line_spacing"`
	WrapStyle         *WrapStyle `yaml:"wrap_style"`
}

// LoadFile reads a YAML style file. The file's base preset is resolved through
// t and the remaining keys replace individual attributes:
//
//	base: cinema
//	font_color: "#FFFFFF"
//	max_chars_per_line: 32
func (t *Table) LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read style file: %w", err)
	}
	return t.Parse(data)
}

// Parse is LoadFile over an in-memory document.
func (t *Table) Parse(data []byte) (Config, error) {
	var o override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Config{}, fmt.Errorf("parse style file: %w", err)
	}

	base := string(Default)
	if o.Base != "" {
		if _, err := ParseName(o.Base); err != nil {
			return Config{}, err
		}
		base = o.Base
	}
	cfg := t.Lookup(base)

	setString(&cfg.FontName, o.FontName)
	setInt(&cfg.FontSize, o.FontSize)
	setString(&cfg.FontColor, o.FontColor)
	setString(&cfg.OutlineColor, o.OutlineColor)
	setString(&cfg.ShadowColor, o.ShadowColor)
	setString(&cfg.BackgroundColor, o.BackgroundColor)
	if o.BackgroundOpacity != nil {
		cfg.BackgroundOpacity = *o.BackgroundOpacity
	}
	setInt(&cfg.OutlineWidth, o.OutlineWidth)
	setInt(&cfg.ShadowOffset, o.ShadowOffset)
	if o.Alignment != nil {
		cfg.Alignment = *o.Alignment
	}
	setInt(&cfg.MarginVertical, o.MarginVertical)
	setInt(&cfg.MarginHorizontal, o.MarginHorizontal)
	setInt(&cfg.MaxCharsPerLine, o.MaxCharsPerLine)
	setInt(&cfg.LineSpacing, o.LineSpacing)
	if o.WrapStyle != nil {
		cfg.WrapStyle = *o.WrapStyle
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("style file: %w", err)
	}
	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
