package style

import (
	"context"
	"runtime"
	"time"
)

// FontSource reports the font families installed on the host.
type FontSource interface {
	Available(ctx context.Context) ([]string, error)
}

// SystemFonts returns a fixed per-OS list of commonly installed families.
type SystemFonts struct {
	GOOS string // empty means runtime.GOOS
}

func (s SystemFonts) Available(ctx context.Context) ([]string, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "windows":
		return []string{"Arial", "Segoe UI", "Calibri", "Times New Roman"}, nil
	case "darwin":
		return []string{"Helvetica", "Arial", "Menlo", "Times New Roman"}, nil
	default:
		return []string{"DejaVu Sans", "Liberation Sans", "Arial", "FreeSans"}, nil
	}
}

// generic family used when nothing can be discovered
const fallbackFont = "Arial"

const defaultFontTimeout = 2 * time.Second

// Table resolves presets against a font source.
type Table struct {
	fonts   FontSource
	timeout time.Duration
}

// NewTable builds a table over fonts. A nil source behaves as an empty one.
func NewTable(fonts FontSource) *Table {
	return &Table{fonts: fonts, timeout: defaultFontTimeout}
}

// WithTimeout bounds how long a lookup waits for the font source.
func (t *Table) WithTimeout(d time.Duration) *Table {
	if d > 0 {
		t.timeout = d
	}
	return t
}

// Lookup returns the preset for name, falling back to Default for unknown
// names. Font discovery failures degrade to a generic family.
func (t *Table) Lookup(name string) Config {
	n, err := ParseName(name)
	if err != nil {
		n = Default
	}
	p := presets[n]
	cfg := p.cfg
	cfg.FontName = t.resolveFont(p.font)
	return cfg
}

func (t *Table) resolveFont(choice fontChoice) string {
	fonts := t.available()

	resolve := func(name string) (string, bool) {
		if name == fontBase {
			if len(fonts) > 0 {
				return fonts[0], true
			}
			return fallbackFont, true
		}
		for _, f := range fonts {
			if f == name {
				return f, true
			}
		}
		return "", false
	}

	if f, ok := resolve(choice.preferred); ok {
		return f
	}
	if choice.fallback == "" {
		// presets without a fallback name a font directly
		return choice.preferred
	}
	if f, ok := resolve(choice.fallback); ok {
		return f
	}
	return choice.fallback
}

func (t *Table) available() []string {
	if t.fonts == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	type result struct {
		fonts []string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		fonts, err := t.fonts.Available(ctx)
		ch <- result{fonts: fonts, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil
		}
		return r.fonts
	case <-ctx.Done():
		return nil
	}
}
