package subtitle

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/timecode"
)

// ASSDialogue is one Dialogue event.
type ASSDialogue struct {
	Fields []string // every column as written, Text included
	Tags   string   // override blocks leading the text, e.g. {\an8}
	Text   string   // text after Tags, ASS escapes kept
}

// assLine is a line of the file in source order. Dialogue lines point
// into dialogues; every other line is replayed verbatim.
type assLine struct {
	raw      string
	dialogue int
}

// ASSFile is a parsed ASS/SSA script. Script info, styles, comments and
// unknown sections survive a Write untouched.
type ASSFile struct {
	lines     []assLine
	dialogues []ASSDialogue
	columns   []string
	textCol   int
	startCol  int
	endCol    int
}

func parseASSFile(path string) (*ASSFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ASS file: %w", err)
	}
	return parseASS(string(data))
}

func parseASS(content string) (*ASSFile, error) {
	content = strings.TrimPrefix(content, bom)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	f := &ASSFile{textCol: -1, startCol: -1, endCol: -1}
	section := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.ToLower(trimmed[1 : len(trimmed)-1])
		} else if section == "events" {
			if v, ok := assField(trimmed, "Format"); ok {
				f.setColumns(v)
				if f.textCol < 0 {
					return nil, fmt.Errorf("ASS file missing Text column in Format line")
				}
			} else if v, ok := assField(trimmed, "Dialogue"); ok {
				d, err := f.parseDialogue(v)
				if err != nil {
					return nil, fmt.Errorf("failed to parse Dialogue at line %d: %w", i+1, err)
				}
				f.lines = append(f.lines, assLine{dialogue: len(f.dialogues)})
				f.dialogues = append(f.dialogues, d)
				continue
			}
		}
		f.lines = append(f.lines, assLine{raw: line, dialogue: -1})
	}

	if f.textCol < 0 {
		return nil, fmt.Errorf("ASS file missing Format line in [Events] section")
	}
	return f, nil
}

// assField returns the value of a "Key: value" line.
func assField(line, key string) (string, bool) {
	rest, ok := strings.CutPrefix(line, key+":")
	if !ok {
		return "", false
	}
	return strings.TrimLeft(rest, " "), true
}

func (f *ASSFile) setColumns(value string) {
	f.columns = strings.Split(value, ",")
	for i, col := range f.columns {
		f.columns[i] = strings.TrimSpace(col)
		switch strings.ToLower(f.columns[i]) {
		case "text":
			f.textCol = i
		case "start":
			f.startCol = i
		case "end":
			f.endCol = i
		}
	}
}

func (f *ASSFile) parseDialogue(value string) (ASSDialogue, error) {
	if f.textCol < 0 {
		return ASSDialogue{}, fmt.Errorf("dialogue before Format line")
	}
	// Text is the last column and may itself contain commas
	fields := strings.SplitN(value, ",", len(f.columns))
	if len(fields) < len(f.columns) {
		return ASSDialogue{}, fmt.Errorf("expected %d fields, got %d", len(f.columns), len(fields))
	}
	tags, text := extractLeadingTags(fields[f.textCol])
	return ASSDialogue{Fields: fields, Tags: tags, Text: text}, nil
}

var leadingTags = regexp.MustCompile(`^(\{[^}]*\})+`)

func extractLeadingTags(text string) (string, string) {
	match := leadingTags.FindString(text)
	return match, text[len(match):]
}

func (f *ASSFile) Format() Format {
	return FormatASS
}

// Segments reads the dialogue timings. Unparseable times read as zero
// rather than failing the whole file.
func (f *ASSFile) Segments() []Segment {
	segments := make([]Segment, len(f.dialogues))
	for i, d := range f.dialogues {
		seg := Segment{Text: assToPlain(d.Text)}
		if f.startCol >= 0 {
			seg.Start, _ = timecode.Parse(strings.TrimSpace(d.Fields[f.startCol]))
		}
		if f.endCol >= 0 {
			seg.End, _ = timecode.Parse(strings.TrimSpace(d.Fields[f.endCol]))
		}
		segments[i] = seg
	}
	return segments
}

func assToPlain(s string) string {
	return strings.NewReplacer(`\N`, "\n", `\n`, "\n").Replace(s)
}

func plainToASS(s string) string {
	return strings.ReplaceAll(s, "\n", `\N`)
}

func (f *ASSFile) SetText(index int, text string) error {
	if err := checkIndex(index, len(f.dialogues)); err != nil {
		return err
	}
	d := &f.dialogues[index]
	d.Text = plainToASS(text)
	d.Fields[f.textCol] = d.Tags + d.Text
	return nil
}

// SetTextWithOverlay puts text above the original line, keeping the
// leading override tags in front of both.
func (f *ASSFile) SetTextWithOverlay(index int, text string) error {
	if err := checkIndex(index, len(f.dialogues)); err != nil {
		return err
	}
	d := &f.dialogues[index]
	d.Fields[f.textCol] = d.Tags + plainToASS(text) + `\N` + d.Text
	return nil
}

// GetOriginalText returns the dialogue text as parsed, without tags.
func (f *ASSFile) GetOriginalText(index int) (string, error) {
	if err := checkIndex(index, len(f.dialogues)); err != nil {
		return "", err
	}
	return f.dialogues[index].Text, nil
}

func (f *ASSFile) Write(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(bom)
	for _, l := range f.lines {
		if l.dialogue >= 0 {
			sb.WriteString("Dialogue: " + strings.Join(f.dialogues[l.dialogue].Fields, ","))
		} else {
			sb.WriteString(l.raw)
		}
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write ASS file: %w", err)
	}
	return nil
}
