package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

// parsed subtitle file that preserves format specific metadata
type File interface {
	Format() Format
	Segments() []Segment
	SetText(index int, text string) error
	SetTextWithOverlay(index int, text string) error
	Write(path string) error
}

func Open(path string) (File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return parseSRTFile(path)
	case ".vtt":
		return parseVTTFile(path)
	case ".ass", ".ssa":
		return parseASSFile(path)
	default:
		return nil, apperr.New(apperr.Input, path, fmt.Errorf("unsupported subtitle format: %s", ext))
	}
}
