package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/timecode"
)

var srtTimingLine = regexp.MustCompile(
	`^\s*(\d+:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d+:\d{2}:\d{2}[,.]\d{1,3})`,
)

type SRTFile struct {
	segments []Segment
}

func parseSRTFile(path string) (*SRTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	segments, err := parseSRT(file)
	if err != nil {
		return nil, err
	}
	return &SRTFile{segments: segments}, nil
}

// states of the block scanner
const (
	srtWantIndex = iota
	srtWantTiming
	srtText
)

func parseSRT(r io.Reader) ([]Segment, error) {
	var (
		segments []Segment
		current  Segment
		text     []string
		state    = srtWantIndex
		lineNum  int
	)
	flush := func() {
		if state == srtText && len(text) > 0 {
			current.Text = strings.Join(text, "\n")
			segments = append(segments, current)
		}
		current = Segment{}
		text = nil
		state = srtWantIndex
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, bom)
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		switch state {
		case srtWantIndex:
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				state = srtWantTiming
				continue
			}
			// some writers omit the index
			fallthrough
		case srtWantTiming:
			m := srtTimingLine.FindStringSubmatch(line)
			if m == nil {
				// stray text outside a block
				state = srtWantIndex
				continue
			}
			start, err := timecode.Parse(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := timecode.Parse(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current.Start, current.End = start, end
			state = srtText
		case srtText:
			text = append(text, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}
	return segments, nil
}

func (f *SRTFile) Format() Format {
	return FormatSRT
}

func (f *SRTFile) Segments() []Segment {
	out := make([]Segment, len(f.segments))
	copy(out, f.segments)
	return out
}

func (f *SRTFile) SetText(index int, text string) error {
	if err := checkIndex(index, len(f.segments)); err != nil {
		return err
	}
	f.segments[index].Text = text
	return nil
}

// SetTextWithOverlay keeps the original line under the translation.
func (f *SRTFile) SetTextWithOverlay(index int, text string) error {
	if err := checkIndex(index, len(f.segments)); err != nil {
		return err
	}
	f.segments[index].Text = text + "\n" + f.segments[index].Text
	return nil
}

// Write re-serializes the cues. Existing line breaks are kept.
func (f *SRTFile) Write(path string) error {
	return writeFile(path, f.segments, func(w io.Writer, segments []Segment) error {
		var sb strings.Builder
		sb.WriteString(bom)
		for i, seg := range segments {
			start, end, err := stampRange(seg, timecode.SRT)
			if err != nil {
				return fmt.Errorf("cue %d: %w", i+1, err)
			}
			fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, start, end, seg.Text)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("index %d out of range (0-%d)", index, n-1)
	}
	return nil
}
