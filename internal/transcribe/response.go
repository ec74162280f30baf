package transcribe

import (
	"fmt"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/llmjson"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// segment from a model's JSON reply
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var transcriptKeys = []string{"segments", "transcript", "data", "results"}

// parseTranscript reads the segment array out of a chat model reply.
func parseTranscript(reply string) ([]subtitle.Segment, error) {
	text := llmjson.Clean(reply)
	if text == "" {
		return nil, fmt.Errorf("no text in response")
	}
	parsed, err := llmjson.Array(text, transcriptKeys, validateSegments)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, llmjson.Snippet(text, 200))
	}
	return toSegments(parsed), nil
}

// at least one segment must carry text or a timestamp
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

// converts parsed segments, dropping empty text and bad timestamps
func toSegments(in []transcriptSegment) []subtitle.Segment {
	out := make([]subtitle.Segment, 0, len(in))
	for _, ts := range in {
		text := strings.TrimSpace(ts.Text)
		if text == "" {
			continue
		}
		seg, err := subtitle.NewSegment(ts.Start, ts.End, text)
		if err != nil {
			continue
		}
		out = append(out, seg)
	}
	return out
}
