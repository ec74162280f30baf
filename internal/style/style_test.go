package style

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type staticFonts []string

func (s staticFonts) Available(ctx context.Context) ([]string, error) {
	return s, nil
}

type failingFonts struct{}

func (failingFonts) Available(ctx context.Context) ([]string, error) {
	return nil, errors.New("fc-list not found")
}

type slowFonts struct{}

func (slowFonts) Available(ctx context.Context) ([]string, error) {
	select {
	case <-time.After(5 * time.Second):
		return []string{"Never"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestEveryNameHasPreset(t *testing.T) {
	if len(Names()) != len(presets) {
		t.Fatalf("Names() has %d entries, table has %d", len(Names()), len(presets))
	}
	table := NewTable(SystemFonts{GOOS: "linux"})
	for _, n := range Names() {
		cfg := table.Lookup(string(n))
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", n, err)
		}
	}
}

func TestLookupValues(t *testing.T) {
	table := NewTable(SystemFonts{GOOS: "linux"})

	def := table.Lookup("default")
	if def.FontName != "DejaVu Sans" || def.FontSize != 24 || def.MaxCharsPerLine != 50 {
		t.Errorf("unexpected default preset: %+v", def)
	}
	if def.BackgroundOpacity != 0.7 || def.Alignment != AlignCenter || def.MarginVertical != 30 {
		t.Errorf("unexpected default layout: %+v", def)
	}

	cinema := table.Lookup("cinema")
	if cinema.FontName != "Arial" || cinema.FontColor != "#FFD700" || cinema.WrapStyle != WrapSmartBottom {
		t.Errorf("unexpected cinema preset: %+v", cinema)
	}

	terminal := table.Lookup("TERMINAL")
	if terminal.Alignment != AlignLeft || terminal.MaxCharsPerLine != 60 {
		t.Errorf("unexpected terminal preset: %+v", terminal)
	}
}

func TestLookupUnknownFallsBackToDefault(t *testing.T) {
	table := NewTable(SystemFonts{GOOS: "linux"})
	if got, want := table.Lookup("neon"), table.Lookup("default"); got != want {
		t.Errorf("Lookup(neon) = %+v, want default %+v", got, want)
	}
}

func TestFontSubstitution(t *testing.T) {
	tests := []struct {
		name  string
		fonts FontSource
		style string
		want  string
	}{
		{"preferred installed", staticFonts{"Times New Roman", "Arial"}, "elegant", "Times New Roman"},
		{"preferred missing uses base", staticFonts{"Helvetica"}, "elegant", "Helvetica"},
		{"roboto missing", staticFonts{"DejaVu Sans"}, "modern", "Arial"},
		{"roboto present", staticFonts{"Roboto"}, "modern", "Roboto"},
		{"courier missing", staticFonts{"Arial"}, "terminal", "Monospace"},
		{"source error", failingFonts{}, "default", "Arial"},
		{"nil source", nil, "minimal", "Arial"},
		{"windows base", SystemFonts{GOOS: "windows"}, "bold", "Arial"},
		{"darwin base", SystemFonts{GOOS: "darwin"}, "default", "Helvetica"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTable(tt.fonts).Lookup(tt.style).FontName
			if got != tt.want {
				t.Errorf("font = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlowFontSourceDoesNotBlock(t *testing.T) {
	table := NewTable(slowFonts{}).WithTimeout(50 * time.Millisecond)

	start := time.Now()
	cfg := table.Lookup("default")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("lookup blocked for %v", elapsed)
	}
	if cfg.FontName != "Arial" {
		t.Errorf("font = %q, want generic fallback", cfg.FontName)
	}
}

func TestParseHex(t *testing.T) {
	short, err := ParseHex("#ABC")
	if err != nil {
		t.Fatal(err)
	}
	long, err := ParseHex("#AABBCC")
	if err != nil {
		t.Fatal(err)
	}
	if short != long {
		t.Errorf("#ABC = %+v, #AABBCC = %+v", short, long)
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "#1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) expected error", bad)
		}
	}
}

func TestAlphaHex(t *testing.T) {
	tests := map[float64]string{0: "00", 1: "FF", 0.5: "80", 0.7: "B2", 0.85: "D9", 2: "FF"}
	for in, want := range tests {
		if got := AlphaHex(in); got != want {
			t.Errorf("AlphaHex(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	doc := "base: cinema\nfont_color: \"#FFFFFF\"\nmax_chars_per_line: 32\nalignment: 1\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewTable(SystemFonts{GOOS: "linux"}).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.FontColor != "#FFFFFF" || cfg.MaxCharsPerLine != 32 || cfg.Alignment != AlignLeft {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.FontSize != 32 || cfg.WrapStyle != WrapSmartBottom {
		t.Errorf("base preset not kept: %+v", cfg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	table := NewTable(SystemFonts{GOOS: "linux"})
	for _, doc := range []string{
		"base: neon\n",
		"font_color: \"#XYZXYZ\"\n",
		"background_opacity: 1.5\n",
		"alignment: 7\n",
		"font_size: [\n",
	} {
		if _, err := table.Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q) expected error", doc)
		}
	}
}
