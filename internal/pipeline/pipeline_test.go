package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
)

type fakeExtractor struct {
	mu   sync.Mutex
	opts []audio.ExtractOptions
	err  error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _, out string, opts audio.ExtractOptions) error {
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("RIFF"), 0o644)
}

type fakeTranscriber struct {
	segments []subtitle.Segment
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (*transcribe.Result, error) {
	return &transcribe.Result{Segments: f.segments, Language: "tr"}, nil
}

type fakeBurner struct {
	subs string
	err  error
}

func (f *fakeBurner) BurnSubtitles(_ context.Context, _, subs, out string, _ style.Config) error {
	f.subs = subs
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("video"), 0o644)
}

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func twoSegments() []subtitle.Segment {
	return []subtitle.Segment{
		{Start: 0, End: 1500 * time.Millisecond, Text: "Merhaba"},
		{Start: 1500 * time.Millisecond, End: 3 * time.Second, Text: "Dünya"},
	}
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SRT, video,srt ,ssa")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "srt,video,ass" {
		t.Errorf("ParseFormats = %v", got)
	}
	if _, err := ParseFormats("srt,gif"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := ParseFormats(" , "); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestProcessFileWritesFormatsAndVideo(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "in", "Talk.MP4"))
	out := filepath.Join(dir, "out")

	ex := &fakeExtractor{}
	burner := &fakeBurner{}
	var stages []Stage
	p, err := NewProcessor(&fakeTranscriber{segments: twoSegments()}, ex, burner,
		WithClock(fixedClock),
		WithObserver(ObserverFunc(func(e Event) { stages = append(stages, e.Stage) })),
	)
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.ProcessFile(context.Background(), src, out, Options{
		Formats: []string{"srt", "ass", "txt", FormatVideo},
		Enhance: true,
	})
	if err != nil {
		t.Fatalf("ProcessFile error: %v", err)
	}

	if res.Status != StatusSuccess || res.Segments != 2 || res.Language != "tr" {
		t.Errorf("result = %+v", res)
	}
	if res.Stem != "Talk_20240309_140507" {
		t.Errorf("stem = %q", res.Stem)
	}
	for _, f := range []string{"srt", "ass", "txt", FormatVideo} {
		path, ok := res.Outputs[f]
		if !ok {
			t.Errorf("missing %s output", f)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s output not on disk: %v", f, err)
		}
	}
	if got := filepath.Base(res.Outputs[FormatVideo]); got != "Talk_20240309_140507_subtitled.mp4" {
		t.Errorf("video output = %q", got)
	}
	if burner.subs != res.Outputs["ass"] {
		t.Errorf("burned %q, want the ASS file", burner.subs)
	}
	if !ex.opts[0].Enhance || ex.opts[0].SampleRate != 16000 {
		t.Errorf("extract options = %+v", ex.opts[0])
	}

	srt, _ := os.ReadFile(res.Outputs["srt"])
	if !strings.Contains(string(srt), "00:00:01,500 --> 00:00:03,000\nDünya") {
		t.Errorf("srt content:\n%s", srt)
	}

	want := []Stage{StageExtracting, StageTranscribing, StageWriting, StageEmbedding, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %v, want %v", i, stages[i], want[i])
		}
	}
}

func TestProcessFileVideoFallsBackToSRT(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "clip.mkv"))
	burner := &fakeBurner{}
	p, _ := NewProcessor(&fakeTranscriber{segments: twoSegments()}, &fakeExtractor{}, burner, WithClock(fixedClock))

	res, err := p.ProcessFile(context.Background(), src, dir, Options{Formats: []string{FormatVideo}})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(burner.subs) != ".srt" || res.Outputs["srt"] != burner.subs {
		t.Errorf("expected an SRT written for burning, got %q", burner.subs)
	}
}

func TestProcessFileBurnFailureIsPartial(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "clip.mp4"))
	burner := &fakeBurner{err: errors.New("ffmpeg exited with status 1")}
	p, _ := NewProcessor(&fakeTranscriber{segments: twoSegments()}, &fakeExtractor{}, burner, WithClock(fixedClock))

	res, err := p.ProcessFile(context.Background(), src, dir, Options{Formats: []string{"srt", FormatVideo}})
	if !errors.Is(err, apperr.Mux) {
		t.Fatalf("expected mux error, got %v", err)
	}
	if res.Status != StatusPartial {
		t.Errorf("status = %s", res.Status)
	}
	if _, ok := res.Outputs["srt"]; !ok {
		t.Error("srt output should still be reported")
	}
	if _, ok := res.Outputs[FormatVideo]; ok {
		t.Error("video output should not be reported")
	}
}

func TestProcessFileAudioSkipsVideo(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "podcast.mp3"))
	burner := &fakeBurner{}
	p, _ := NewProcessor(&fakeTranscriber{segments: twoSegments()}, &fakeExtractor{}, burner, WithClock(fixedClock))

	res, err := p.ProcessFile(context.Background(), src, dir, Options{Formats: []string{"vtt", FormatVideo}})
	if err != nil {
		t.Fatal(err)
	}
	if burner.subs != "" {
		t.Error("audio input must not be burned")
	}
	if len(res.Outputs) != 1 || res.Outputs["vtt"] == "" {
		t.Errorf("outputs = %v", res.Outputs)
	}
}

func TestProcessFileNoSpeech(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "silence.wav"))
	core, observed := observer.New(zap.WarnLevel)
	p, _ := NewProcessor(&fakeTranscriber{}, &fakeExtractor{}, nil,
		WithClock(fixedClock), WithLogger(logging.FromZap(zap.New(core))))

	res, err := p.ProcessFile(context.Background(), src, dir, Options{})
	if !errors.Is(err, apperr.Transcription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s", res.Status)
	}

	failures := observed.FilterMessage("processing failed").All()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure entry, got %d", len(failures))
	}
	if kind := failures[0].ContextMap()["kind"]; kind != string(apperr.Transcription) {
		t.Errorf("logged kind = %v, want %q", kind, apperr.Transcription)
	}
}

func TestProcessFileRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "notes.pdf"))
	p, _ := NewProcessor(&fakeTranscriber{}, &fakeExtractor{}, nil)

	_, err := p.ProcessFile(context.Background(), src, dir, Options{})
	if !errors.Is(err, apperr.Input) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestStemIsUniquePerProcessor(t *testing.T) {
	dir := t.TempDir()
	p, _ := NewProcessor(&fakeTranscriber{}, &fakeExtractor{}, nil, WithClock(fixedClock))

	a := p.stem("/x/talk.mp4", dir)
	b := p.stem("/y/talk.mp4", dir)
	if a != "talk_20240309_140507" {
		t.Errorf("first stem = %q", a)
	}
	if b == a || !strings.HasPrefix(b, a+"_") || len(b) != len(a)+9 {
		t.Errorf("second stem = %q", b)
	}
}

func TestNewProcessorRequiresCapabilities(t *testing.T) {
	if _, err := NewProcessor(nil, &fakeExtractor{}, nil); err == nil {
		t.Error("expected error without transcriber")
	}
	if _, err := NewProcessor(&fakeTranscriber{}, nil, nil); err == nil {
		t.Error("expected error without extractor")
	}
}

func TestBatchContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := touch(t, filepath.Join(dir, "a.wav"))
	bad := filepath.Join(dir, "missing.wav")
	also := touch(t, filepath.Join(dir, "c.mp3"))

	p, _ := NewProcessor(&fakeTranscriber{segments: twoSegments()}, &fakeExtractor{}, nil, WithClock(fixedClock))
	report := p.Batch(context.Background(), []string{good, bad, also}, filepath.Join(dir, "out"), Options{}, 2)

	if len(report.Results) != 3 {
		t.Fatalf("results = %d", len(report.Results))
	}
	if report.Count(StatusSuccess) != 2 || report.Count(StatusFailed) != 1 {
		t.Errorf("success %d failed %d", report.Count(StatusSuccess), report.Count(StatusFailed))
	}
	if report.Results[1].Source != bad || report.Results[1].Status != StatusFailed {
		t.Errorf("result order not preserved: %+v", report.Results[1])
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"a.wav", "missing.wav", "failed", "Completed: 2 of 3 files"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "a.wav"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.mkv"))

	files, err := CollectInputs(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "b.mp4"),
		filepath.Join(dir, "sub", "c.mkv"),
	}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Errorf("batch inputs = %v", files)
	}

	single, err := CollectInputs(dir, false)
	if err != nil || len(single) != 1 || single[0] != filepath.Join(dir, "a.wav") {
		t.Errorf("single dir input = %v, %v", single, err)
	}

	if _, err := CollectInputs(filepath.Join(dir, "a.wav"), true); err == nil {
		t.Error("batch mode on a file should fail")
	}
	if _, err := CollectInputs(filepath.Join(dir, "notes.txt"), false); err == nil {
		t.Error("unsupported file should fail")
	}
	if _, err := CollectInputs(filepath.Join(dir, "nope"), false); !errors.Is(err, apperr.Input) {
		t.Errorf("missing path error = %v", err)
	}
}

func TestStageProgress(t *testing.T) {
	if StageDone.Progress() != 100 || StageQueued.Progress() != 0 {
		t.Error("unexpected progress bounds")
	}
	if StageTranscribing.String() != "transcribing" {
		t.Errorf("String = %q", StageTranscribing.String())
	}
}
