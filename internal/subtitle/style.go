package subtitle

import (
	"fmt"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
)

// HexToASS converts #RRGGBB (or #RGB) into the &HAABBGGRR form used by ASS
// style lines. alpha is two hex digits, 00 being opaque.
func HexToASS(hex, alpha string) (string, error) {
	c, err := style.ParseHex(hex)
	if err != nil {
		return "", err
	}
	if len(alpha) != 2 {
		return "", fmt.Errorf("invalid alpha %q", alpha)
	}
	return c.ASS(alpha), nil
}

// ForceStyle renders cfg as the force_style argument of ffmpeg's subtitles
// filter, for burning SRT/VTT files that carry no styling of their own.
func ForceStyle(cfg style.Config) (string, error) {
	primary, err := HexToASS(cfg.FontColor, "00")
	if err != nil {
		return "", fmt.Errorf("font colour: %w", err)
	}
	back, err := HexToASS(cfg.BackgroundColor, style.AlphaHex(cfg.BackgroundOpacity))
	if err != nil {
		return "", fmt.Errorf("background colour: %w", err)
	}
	outline, err := HexToASS(cfg.OutlineColor, "00")
	if err != nil {
		return "", fmt.Errorf("outline colour: %w", err)
	}

	fields := []string{
		"FontName=" + cfg.FontName,
		fmt.Sprintf("FontSize=%d", cfg.FontSize),
		"PrimaryColour=" + primary,
		"BackColour=" + back,
		"OutlineColour=" + outline,
		"BorderStyle=1",
		fmt.Sprintf("Outline=%d", cfg.OutlineWidth),
		fmt.Sprintf("Shadow=%d", cfg.ShadowOffset),
		fmt.Sprintf("Alignment=%d", int(cfg.Alignment)),
		fmt.Sprintf("MarginV=%d", cfg.MarginVertical),
		fmt.Sprintf("MarginL=%d", cfg.MarginHorizontal),
		fmt.Sprintf("MarginR=%d", cfg.MarginHorizontal),
	}
	return strings.Join(fields, ","), nil
}

// FilterPath escapes a file path for use inside an ffmpeg filter argument.
func FilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, ":", `\:`)
	return strings.ReplaceAll(path, "'", `\'`)
}

// BurnFilter returns the -vf value that renders path onto the video. ASS
// files keep their own styling; other formats are styled with cfg.
func BurnFilter(path string, cfg style.Config) (string, error) {
	escaped := FilterPath(path)
	if FormatFromPath(path) == FormatASS {
		return fmt.Sprintf("subtitles='%s'", escaped), nil
	}
	force, err := ForceStyle(cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("subtitles='%s':force_style='%s'", escaped, force), nil
}
