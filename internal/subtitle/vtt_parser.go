package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/timecode"
)

// cue timing with optional hour field; cue settings after the end time are ignored
var vttTimingLine = regexp.MustCompile(
	`^\s*((?:\d+:)?\d{2}:\d{2}\.\d{3})\s*-->\s*((?:\d+:)?\d{2}:\d{2}\.\d{3})`,
)

type VTTFile struct {
	segments []Segment
}

func parseVTTFile(path string) (*VTTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open VTT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	segments, err := parseVTT(file)
	if err != nil {
		return nil, err
	}
	return &VTTFile{segments: segments}, nil
}

func parseVTT(r io.Reader) ([]Segment, error) {
	var (
		segments []Segment
		current  *Segment
		text     []string
		lineNum  int
		skipping bool
	)
	flush := func() {
		if current != nil && len(text) > 0 {
			current.Text = strings.Join(text, "\n")
			segments = append(segments, *current)
		}
		current = nil
		text = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, bom)
			if strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				continue
			}
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			skipping = false
			continue
		}
		if skipping {
			continue
		}

		// NOTE, STYLE and REGION blocks run until the next blank line
		if current == nil && (strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION")) {
			skipping = true
			continue
		}

		if m := vttTimingLine.FindStringSubmatch(line); m != nil {
			flush()
			start, err := timecode.Parse(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := timecode.Parse(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Segment{Start: start, End: end}
			continue
		}

		// cue identifiers precede the timing line and are dropped
		if current != nil {
			text = append(text, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}
	return segments, nil
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Segments() []Segment {
	out := make([]Segment, len(f.segments))
	copy(out, f.segments)
	return out
}

func (f *VTTFile) SetText(index int, text string) error {
	if err := checkIndex(index, len(f.segments)); err != nil {
		return err
	}
	f.segments[index].Text = text
	return nil
}

func (f *VTTFile) SetTextWithOverlay(index int, text string) error {
	if err := checkIndex(index, len(f.segments)); err != nil {
		return err
	}
	f.segments[index].Text = text + "\n" + f.segments[index].Text
	return nil
}

func (f *VTTFile) Write(path string) error {
	return writeFile(path, f.segments, func(w io.Writer, segments []Segment) error {
		var sb strings.Builder
		sb.WriteString(bom)
		sb.WriteString("WEBVTT\n\n")
		for i, seg := range segments {
			start, end, err := stampRange(seg, timecode.VTT)
			if err != nil {
				return fmt.Errorf("cue %d: %w", i+1, err)
			}
			fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, start, end, seg.Text)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
