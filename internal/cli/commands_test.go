package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/dubbing"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
)

func TestExtractOutputPath(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"video.mp4", "wav", "video.wav"},
		{"dir/clip.final.mkv", "mp3", "dir/clip.final.mp3"},
		{"noext", "flac", "noext.flac"},
	}
	for _, tt := range tests {
		if got := extractOutputPath(tt.input, tt.format); got != tt.want {
			t.Errorf("extractOutputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestLanguageCodes(t *testing.T) {
	codes, err := languageCodes([]string{"EN", "de"})
	if err != nil {
		t.Fatalf("languageCodes: %v", err)
	}
	if len(codes) != 2 || codes[0] != "en" || codes[1] != "de" {
		t.Fatalf("codes = %v", codes)
	}

	if _, err := languageCodes(nil); err == nil || !strings.Contains(err.Error(), "tr") {
		t.Fatalf("empty list error = %v, want supported list", err)
	}
	if _, err := languageCodes([]string{"xx"}); err == nil {
		t.Fatal("unknown language accepted")
	}
}

func TestWriteStyleYAMLRoundTrip(t *testing.T) {
	cfg := style.Lookup(string(style.Cinema))

	var buf bytes.Buffer
	if err := writeStyleYAML(&buf, cfg); err != nil {
		t.Fatalf("writeStyleYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "font_size:") {
		t.Fatalf("yaml missing keys:\n%s", buf.String())
	}

	var back style.Config
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != cfg {
		t.Fatalf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestRenderDubReport(t *testing.T) {
	report := &dubbing.Report{Results: []dubbing.LanguageResult{
		{
			Language:   "en",
			Status:     dubbing.LanguageSucceeded,
			FinalVideo: "/out/final_video_en_with_subtitles.mp4",
			Segments: []dubbing.SegmentReport{
				{Index: 0, Status: dubbing.StatusInserted},
				{Index: 1, Status: dubbing.StatusFailed},
			},
		},
		{Language: "de", Status: dubbing.LanguageFailed, Err: errors.New("tts unavailable\nretry later")},
	}}

	var buf bytes.Buffer
	if err := renderDubReport(&buf, report); err != nil {
		t.Fatalf("renderDubReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"final_video_en_with_subtitles.mp4",
		"(tts unavailable)",
		"Completed: 1 of 2 languages (0 partial)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "retry later") {
		t.Error("report should only show the first error line")
	}
}
