package translate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
Hello there

2
00:00:03,000 --> 00:00:04,000
General Kenobi
`

func openSample(t *testing.T) (subtitle.File, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := subtitle.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f, path
}

func TestTranslateFileReplacesText(t *testing.T) {
	f, path := openSample(t)

	n, err := TranslateFile(context.Background(), &fakeTranslator{prefix: "es:"}, f, FileOptions{Concurrency: 2}, nil)
	if err != nil {
		t.Fatalf("TranslateFile error: %v", err)
	}
	if n != 2 {
		t.Errorf("changed = %d, want 2", n)
	}

	out := OutputPath(path, "es", false)
	if err := f.Write(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "es:Hello there") || strings.Contains(string(data), "\nHello there") {
		t.Errorf("unexpected output:\n%s", data)
	}
	if !strings.Contains(string(data), "00:00:01,000 --> 00:00:02,500") {
		t.Errorf("timing lost:\n%s", data)
	}
}

func TestTranslateFileOverlayKeepsOriginal(t *testing.T) {
	f, _ := openSample(t)

	if _, err := TranslateFile(context.Background(), &fakeTranslator{prefix: "ja:"}, f, FileOptions{Overlay: true}, nil); err != nil {
		t.Fatalf("TranslateFile error: %v", err)
	}
	if got := f.Segments()[1].Text; got != "ja:General Kenobi\nGeneral Kenobi" {
		t.Errorf("overlay text = %q", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in      string
		overlay bool
		want    string
	}{
		{"video.srt", false, "video.ja.srt"},
		{"dir.v2/video.ass", true, "dir.v2/video.ja.overlay.ass"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in, "ja", tt.overlay); got != tt.want {
			t.Errorf("OutputPath(%q, %v) = %q, want %q", tt.in, tt.overlay, got, tt.want)
		}
	}
}
