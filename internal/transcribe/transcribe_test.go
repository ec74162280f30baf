package transcribe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// fakeTranscriber returns one segment per file named after the file.
type fakeTranscriber struct {
	calls int32
	fail  string
	empty bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (*Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail != "" && strings.Contains(path, f.fail) {
		return nil, errors.New("rate limited")
	}
	if f.empty {
		return &Result{}, nil
	}
	return &Result{Segments: []subtitle.Segment{
		{Start: 500 * time.Millisecond, End: 2 * time.Second, Text: filepath.Base(path)},
	}}, nil
}

func chunkList(n int) []audio.ChunkInfo {
	return audio.PlanChunks(time.Duration(n)*10*time.Second, 10*time.Second, func(i int) string {
		return filepath.Join("chunks", "part"+string(rune('a'+i)))
	})
}

func TestTranscribeChunksShiftsAndOrders(t *testing.T) {
	fake := &fakeTranscriber{}
	res, err := transcribeChunks(context.Background(), fake, chunkList(4), 2, "tr")
	if err != nil {
		t.Fatalf("transcribeChunks error: %v", err)
	}
	if len(res.Segments) != 4 {
		t.Fatalf("got %d segments", len(res.Segments))
	}
	for i, seg := range res.Segments {
		wantStart := time.Duration(i)*10*time.Second + 500*time.Millisecond
		if seg.Start != wantStart {
			t.Errorf("segment %d start = %v, want %v", i, seg.Start, wantStart)
		}
		if seg.Text != "part"+string(rune('a'+i)) {
			t.Errorf("segment %d text = %q", i, seg.Text)
		}
	}
	if res.Duration != 40*time.Second || res.Language != "tr" {
		t.Errorf("result = %+v", res)
	}
}

func TestTranscribeChunksStopsOnFailure(t *testing.T) {
	fake := &fakeTranscriber{fail: "partc"}
	_, err := transcribeChunks(context.Background(), fake, chunkList(4), 1, "")
	if err == nil || !strings.Contains(err.Error(), "chunk 2 failed") {
		t.Fatalf("expected chunk failure, got %v", err)
	}
}

func TestRunRejectsEmptyTranscript(t *testing.T) {
	_, err := Run(context.Background(), &fakeTranscriber{empty: true}, "/tmp/talk.wav", nil, 1)
	if !errors.Is(err, apperr.Transcription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	if !strings.Contains(err.Error(), "talk.wav") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestRunUsesChunksWhenSupported(t *testing.T) {
	fake := &fakeTranscriber{}
	lazy := NewLazy(func(context.Context) (Transcriber, error) { return fake, nil })

	res, err := Run(context.Background(), lazy, "whole.wav", chunkList(3), 3)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Segments) != 3 || fake.calls != 3 {
		t.Errorf("segments = %d, calls = %d", len(res.Segments), fake.calls)
	}
}

func TestLazyBuildsOnce(t *testing.T) {
	var builds int32
	fake := &fakeTranscriber{}
	lazy := NewLazy(func(context.Context) (Transcriber, error) {
		atomic.AddInt32(&builds, 1)
		return fake, nil
	})

	for range 3 {
		if _, err := lazy.Transcribe(context.Background(), "a.wav"); err != nil {
			t.Fatal(err)
		}
	}
	if builds != 1 {
		t.Errorf("backend built %d times", builds)
	}
}

func TestLazyRemembersError(t *testing.T) {
	boom := errors.New("no credentials")
	var builds int32
	lazy := NewLazy(func(context.Context) (Transcriber, error) {
		atomic.AddInt32(&builds, 1)
		return nil, boom
	})
	for range 2 {
		if _, err := lazy.Transcribe(context.Background(), "a.wav"); !errors.Is(err, boom) {
			t.Fatalf("expected build error, got %v", err)
		}
	}
	if builds != 1 {
		t.Errorf("backend built %d times", builds)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}
	if _, err := Factory(ctx, ProviderGemini, "", Options{}); err == nil {
		t.Error("expected error for missing Gemini key")
	}
	if _, err := Factory(ctx, Provider("vosk"), "k", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
	tr, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(ConcurrentTranscriber); !ok {
		t.Errorf("%T should support chunks", tr)
	}
}

func TestEstimateTime(t *testing.T) {
	tests := []struct {
		model string
		want  float64
	}{
		{"tiny", 30},
		{"BASE", 50},
		{"large-v2", 220},
		{"custom", 150},
	}
	for _, tt := range tests {
		if got := EstimateTime(100, tt.model); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimateTime(100, %q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestWhisperTranscriber(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a unix shell")
	}
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "lecture.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	argsFile := filepath.Join(dir, "args.txt")
	bin := filepath.Join(dir, "whisper")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\n" +
		"while [ $# -gt 0 ]; do if [ \"$1\" = --output_dir ]; then out=\"$2\"; fi; shift; done\n" +
		"cat > \"$out/lecture.json\" <<'EOF'\n" +
		`{"text": "Merhaba. Nasılsınız?", "language": "tr", "segments": [` +
		`{"id": 0, "start": 0.0, "end": 1.25, "text": " Merhaba."},` +
		`{"id": 1, "start": 1.25, "end": 2.5, "text": " Nasılsınız?"},` +
		`{"id": 2, "start": 2.5, "end": 3.0, "text": "  "}]}` + "\nEOF\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	tr, err := NewWhisperTranscriber(Options{Command: bin, Model: "small", Language: "tr", Device: "cpu"})
	if err != nil {
		t.Fatalf("NewWhisperTranscriber error: %v", err)
	}
	res, err := tr.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(res.Segments))
	}
	if res.Segments[0].Text != "Merhaba." || res.Segments[1].Start != 1250*time.Millisecond {
		t.Errorf("segments = %+v", res.Segments)
	}
	if res.Language != "tr" || res.Duration != 2500*time.Millisecond {
		t.Errorf("result language %q duration %v", res.Language, res.Duration)
	}

	raw, _ := os.ReadFile(argsFile)
	args := string(raw)
	for _, want := range []string{"small", "--language\ntr", "--fp16\nFalse", "--output_format\njson"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q:\n%s", want, args)
		}
	}
}

func TestWhisperTranscriberFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a unix shell")
	}
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(dir, "whisper")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\necho 'RuntimeError: CUDA out of memory' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	tr, err := NewWhisperTranscriber(Options{Command: bin})
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.Transcribe(context.Background(), audioPath)
	if !errors.Is(err, apperr.ExternalTool) || !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("expected external tool error with stderr, got %v", err)
	}
}

func TestNewWhisperTranscriberMissingCommand(t *testing.T) {
	if _, err := NewWhisperTranscriber(Options{Command: "/nonexistent/whisper-xyz"}); err == nil {
		t.Fatal("expected error")
	}
}
