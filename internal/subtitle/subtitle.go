// Package subtitle serializes timed transcript segments to subtitle files and
// reads existing SRT, VTT and ASS files back into segments.
package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/timecode"
)

// Segment is one transcript fragment. Start < End for a well-formed segment.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// NewSegment builds a segment from float second offsets.
func NewSegment(start, end float64, text string) (Segment, error) {
	s, err := timecode.FromSeconds(start)
	if err != nil {
		return Segment{}, fmt.Errorf("segment start: %w", err)
	}
	e, err := timecode.FromSeconds(end)
	if err != nil {
		return Segment{}, fmt.Errorf("segment end: %w", err)
	}
	return Segment{Start: s, End: e, Text: text}, nil
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Shift returns s moved by offset, used when stitching chunked transcripts.
func (s Segment) Shift(offset time.Duration) Segment {
	return Segment{Start: s.Start + offset, End: s.End + offset, Text: s.Text}
}

// Span returns the end of the latest segment.
func Span(segments []Segment) time.Duration {
	var end time.Duration
	for _, s := range segments {
		if s.End > end {
			end = s.End
		}
	}
	return end
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
	FormatTXT Format = "txt"
)

// Formats lists every writable format.
func Formats() []Format {
	return []Format{FormatSRT, FormatVTT, FormatASS, FormatTXT}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatSRT, FormatVTT, FormatASS, FormatTXT:
		return f, nil
	case "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// subtitle format based on file extension
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	case ".txt":
		return FormatTXT
	default:
		return FormatSRT
	}
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	case FormatTXT:
		return ".txt"
	default:
		return ".srt"
	}
}
