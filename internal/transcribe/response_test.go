package transcribe

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr string
	}{
		{
			name:  "fenced array",
			reply: "```json\n[{\"start\": 0, \"end\": 2.5, \"text\": \"Merhaba\"}, {\"start\": 2.5, \"end\": 4, \"text\": \" hoş geldiniz \"}]\n```",
			want:  []string{"Merhaba", "hoş geldiniz"},
		},
		{
			name: "chatter around the array",
			reply: `I transcribed the clip. The speaker talks Turkish.
[{"start": 1.0, "end": 3.0, "text": "Bugün hava güzel"}]
Timestamps are in seconds.`,
			want: []string{"Bugün hava güzel"},
		},
		{
			name:  "transcript wrapper",
			reply: `{"language": "en", "transcript": [{"start": 0, "end": 1, "text": "Hi"}]}`,
			want:  []string{"Hi"},
		},
		{
			name:  "empty texts dropped after parsing",
			reply: `[{"start": 0, "end": 1, "text": "  "}, {"start": 1, "end": 2, "text": "kept"}]`,
			want:  []string{"kept"},
		},
		{
			name:  "negative timestamp dropped",
			reply: `[{"start": -1, "end": 1, "text": "bad"}, {"start": 1, "end": 2, "text": "good"}]`,
			want:  []string{"good"},
		},
		{name: "only fences", reply: "```\n```", wantErr: "no text"},
		{name: "no json", reply: "There is only music in this file.", wantErr: "no valid JSON"},
		{name: "all zero", reply: `[{"start": 0, "end": 0, "text": ""}]`, wantErr: "no valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := parseTranscript(tt.reply)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTranscript: %v", err)
			}
			if len(segments) != len(tt.want) {
				t.Fatalf("got %d segments, want %d", len(segments), len(tt.want))
			}
			for i, want := range tt.want {
				if segments[i].Text != want {
					t.Errorf("segment %d text = %q, want %q", i, segments[i].Text, want)
				}
			}
		})
	}
}

func TestParseTranscriptKeepsMilliseconds(t *testing.T) {
	segments, err := parseTranscript(`[{"start": 3661.234, "end": 3662.5, "text": "late"}]`)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Hour + time.Minute + time.Second + 234*time.Millisecond
	if segments[0].Start != want {
		t.Fatalf("start = %v, want %v", segments[0].Start, want)
	}
}

func TestParseTranscriptionResponseJoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: `[{"start": 0, "end": 1, `},
				{Text: `"text": "split reply"}]`},
			}},
		}},
	}
	segments, err := parseTranscriptionResponse(resp)
	if err != nil {
		t.Fatalf("parseTranscriptionResponse: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "split reply" {
		t.Fatalf("segments = %+v", segments)
	}

	if _, err := parseTranscriptionResponse(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("empty response accepted")
	}
}
