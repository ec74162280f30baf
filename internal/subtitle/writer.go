package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/textwrap"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/timecode"
)

const bom = "\ufeff"

// WriterOptions configures every serializer. A zero Style selects the
// default preset.
type WriterOptions struct {
	Style style.Config

	// TXT only: prefix each line with its SRT time range.
	IncludeTimestamps bool

	// ASS only: emit HH:MM:SS,mmm event times instead of H:MM:SS.cc, matching
	// files produced by older releases.
	LegacyASSTimestamps bool
}

// Writer serializes segments in one format.
type Writer interface {
	Encode(w io.Writer, segments []Segment) error
	Write(segments []Segment, path string) error
}

// SubRip format
type SRTWriter struct {
	style style.Config
}

// WebVTT format
type VTTWriter struct {
	style style.Config
}

// Advanced SubStation Alpha format
type ASSWriter struct {
	style  style.Config
	legacy bool
}

// plain transcript
type TXTWriter struct {
	timestamps bool
}

func NewWriter(format Format, opts WriterOptions) (Writer, error) {
	cfg := opts.Style
	if cfg == (style.Config{}) {
		cfg = style.Lookup(string(style.Default))
	}

	switch format {
	case FormatSRT:
		return &SRTWriter{style: cfg}, nil
	case FormatVTT:
		return &VTTWriter{style: cfg}, nil
	case FormatASS:
		return &ASSWriter{style: cfg, legacy: opts.LegacyASSTimestamps}, nil
	case FormatTXT:
		return &TXTWriter{timestamps: opts.IncludeTimestamps}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the subtitle to an SRT file
func (w *SRTWriter) Write(segments []Segment, path string) error {
	return writeFile(path, segments, w.Encode)
}

func (w *SRTWriter) Encode(out io.Writer, segments []Segment) error {
	var sb strings.Builder
	sb.WriteString(bom)
	if err := writeBlocks(&sb, segments, w.style.MaxCharsPerLine, timecode.SRT); err != nil {
		return err
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// writes the subtitle to a VTT file
func (w *VTTWriter) Write(segments []Segment, path string) error {
	return writeFile(path, segments, w.Encode)
}

func (w *VTTWriter) Encode(out io.Writer, segments []Segment) error {
	var sb strings.Builder
	sb.WriteString(bom)
	sb.WriteString("WEBVTT\n\n")
	if err := writeBlocks(&sb, segments, w.style.MaxCharsPerLine, timecode.VTT); err != nil {
		return err
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// numbered blocks shared by SRT and VTT
func writeBlocks(
	sb *strings.Builder,
	segments []Segment,
	maxChars int,
	stamp func(d time.Duration) (string, error),
) error {
	for i, seg := range segments {
		start, end, err := stampRange(seg, stamp)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		fmt.Fprintf(sb, "%d\n", i+1)
		fmt.Fprintf(sb, "%s --> %s\n", start, end)
		sb.WriteString(strings.Join(textwrap.Wrap(seg.Text, maxChars), "\n"))
		sb.WriteString("\n\n")
	}
	return nil
}

// writes the subtitle to an ASS file
func (w *ASSWriter) Write(segments []Segment, path string) error {
	return writeFile(path, segments, w.Encode)
}

func (w *ASSWriter) Encode(out io.Writer, segments []Segment) error {
	cfg := w.style

	primary, err := HexToASS(cfg.FontColor, "00")
	if err != nil {
		return fmt.Errorf("font colour: %w", err)
	}
	outline, err := HexToASS(cfg.OutlineColor, "00")
	if err != nil {
		return fmt.Errorf("outline colour: %w", err)
	}
	back, err := HexToASS(cfg.BackgroundColor, style.AlphaHex(cfg.BackgroundOpacity))
	if err != nil {
		return fmt.Errorf("background colour: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(bom)

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: Generated Subtitles\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&sb, "WrapStyle: %d\n", cfg.WrapStyle)
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	sb.WriteString("PlayResX: 384\n")
	sb.WriteString("PlayResY: 288\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&sb, "Style: Default,%s,%d,%s,%s,%s,%s,0,0,0,0,100,100,0,0,1,%d,%d,%d,%d,%d,%d,1\n\n",
		cfg.FontName, cfg.FontSize,
		primary, primary, outline, back,
		cfg.OutlineWidth, cfg.ShadowOffset, int(cfg.Alignment),
		cfg.MarginHorizontal, cfg.MarginHorizontal, cfg.MarginVertical)

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	stamp := timecode.ASS
	if w.legacy {
		stamp = timecode.LegacyASS
	}
	for i, seg := range segments {
		start, end, err := stampRange(seg, stamp)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			start, end, strings.Join(textwrap.Wrap(seg.Text, cfg.MaxCharsPerLine), `\N`))
	}

	_, err = io.WriteString(out, sb.String())
	return err
}

// writes a plain text transcript
func (w *TXTWriter) Write(segments []Segment, path string) error {
	return writeFile(path, segments, w.Encode)
}

func (w *TXTWriter) Encode(out io.Writer, segments []Segment) error {
	var sb strings.Builder
	if w.timestamps {
		for i, seg := range segments {
			start, end, err := stampRange(seg, timecode.SRT)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i+1, err)
			}
			fmt.Fprintf(&sb, "[%s --> %s] %s\n", start, end, strings.TrimSpace(seg.Text))
		}
	} else {
		texts := make([]string, len(segments))
		for i, seg := range segments {
			texts[i] = strings.TrimSpace(seg.Text)
		}
		sb.WriteString(strings.Join(texts, " "))
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func stampRange(seg Segment, stamp func(time.Duration) (string, error)) (string, string, error) {
	start, err := stamp(seg.Start)
	if err != nil {
		return "", "", err
	}
	end, err := stamp(seg.End)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// encodes into memory first so a failed encode never leaves a truncated file
func writeFile(path string, segments []Segment, encode func(io.Writer, []Segment) error) error {
	var buf bytes.Buffer
	if err := encode(&buf, segments); err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
