package llmjson

import (
	"errors"
	"testing"
)

type cue struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

func anyText(cues []cue) bool {
	for _, c := range cues {
		if c.Text != "" {
			return true
		}
	}
	return false
}

func TestArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		first   string
		count   int
		wantErr bool
	}{
		{
			name:  "bare array",
			input: `[{"start": 0, "text": "Merhaba"}, {"start": 1.5, "text": "Nasılsın?"}]`,
			first: "Merhaba",
			count: 2,
		},
		{
			name: "prose on both sides",
			input: `Sure! Here are the cues:
[{"start": 2, "text": "İyi akşamlar"}]
Let me know if anything is off.`,
			first: "İyi akşamlar",
			count: 1,
		},
		{
			name:  "preferred key wins over other fields",
			input: `{"notes": [{"start": 9, "text": "aside"}], "segments": [{"start": 0, "text": "main"}]}`,
			first: "main",
			count: 1,
		},
		{
			name:  "unknown field still found",
			input: `{"payload": [{"start": 0, "text": "wrapped"}]}`,
			first: "wrapped",
			count: 1,
		},
		{
			name:  "nested object",
			input: `{"response": {"segments": [{"start": 0, "text": "deep"}]}}`,
			first: "deep",
			count: 1,
		},
		{
			name: "rejected array skipped",
			input: `[1, 2, 3]
{"status": "ok"}
[{"start": 4, "text": "real"}]`,
			first: "real",
			count: 1,
		},
		{name: "empty array", input: `[]`, wantErr: true},
		{name: "only empty text", input: `[{"start": 0, "text": ""}]`, wantErr: true},
		{name: "truncated", input: `[{"start": 0, "text": "cut`, wantErr: true},
		{name: "plain prose", input: `I could not hear any speech.`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Array(tt.input, []string{"segments", "results"}, anyText)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("err = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Array: %v", err)
			}
			if len(got) != tt.count || got[0].Text != tt.first {
				t.Fatalf("got %+v, want %d cues starting with %q", got, tt.count, tt.first)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"[1]":                         "[1]",
		"```json\n[1]\n```":           "[1]",
		"```\n{\"a\": 1}\n```":        `{"a": 1}`,
		"\n  ```json\n[2]\n```  \n\n": "[2]",
		"  ```  ":                     "",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeBackslashes(t *testing.T) {
	tests := map[string]string{
		`line one\Nline two`:   `line one\\Nline two`,
		`quote \" and \n stay`: `quote \" and \n stay`,
		`already \\N escaped`:  `already \\N escaped`,
		`unicode ç survives`:   `unicode ç survives`,
		`trailing \`:           `trailing \`,
	}
	for in, want := range tests {
		if got := EscapeBackslashes(in); got != want {
			t.Errorf("EscapeBackslashes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("kısa", 10); got != "kısa" {
		t.Errorf("short input changed: %q", got)
	}
	if got := Snippet("çğıöşü", 3); got != "çğı..." {
		t.Errorf("Snippet = %q, want rune-safe cut", got)
	}
}
