package translate

import (
	"strings"
	"testing"
)

func TestParseResults(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected int
		want     []string
		wantErr  string
	}{
		{
			name:     "fenced array",
			reply:    "```json\n[{\"index\": 0, \"text\": \"Günaydın\"}, {\"index\": 1, \"text\": \"İyi geceler\"}]\n```",
			expected: 2,
			want:     []string{"Günaydın", "İyi geceler"},
		},
		{
			name: "prose and translations wrapper",
			reply: `Here you go:
{"translations": [{"index": 0, "text": "Guten Morgen"}]}
Anything else?`,
			expected: 1,
			want:     []string{"Guten Morgen"},
		},
		{
			name:     "ass line break survives",
			reply:    `[{"index": 0, "text": "ilk satır\Nikinci satır"}]`,
			expected: 1,
			want:     []string{`ilk satır\Nikinci satır`},
		},
		{
			name:     "count mismatch",
			reply:    "```json\n[{\"index\": 0, \"text\": \"Hallo\"}]\n```",
			expected: 2,
			wantErr:  "expected 2 results, got 1",
		},
		{name: "empty reply", reply: "  ```  ", expected: 1, wantErr: "no text"},
		{name: "blank texts", reply: `[{"index": 0, "text": ""}]`, expected: 1, wantErr: "failed to parse"},
		{name: "refusal", reply: "I cannot translate this.", expected: 1, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseResults(tt.reply, tt.expected)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResults: %v", err)
			}
			for i, want := range tt.want {
				if results[i].Index != i || results[i].Text != want {
					t.Errorf("result %d = %+v, want %q", i, results[i], want)
				}
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		InputLanguage:  "English",
		TargetLanguage: "Turkish",
		Prompt:         "keep it informal",
	}

	items := []TranslationItem{
		{Index: 0, Text: "Hello world"},
		{Index: 1, Text: "Goodbye"},
	}

	prompt := BuildPrompt(opts, items)

	for _, want := range []string{
		"from English to Turkish",
		"Hello world",
		`"index": 0`,
		"- keep it informal",
		`\N line breaks`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptWithoutInputLanguage(t *testing.T) {
	prompt := BuildPrompt(Options{TargetLanguage: "Spanish"}, []TranslationItem{
		{Index: 0, Text: "Hello"},
	})

	if strings.Contains(prompt, "English") || strings.Contains(prompt, "from ") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
}
