// Package pipeline runs the subtitle generation flow for one media file or a
// batch of them: extract speech, transcribe, write subtitle files and
// optionally burn them into the video.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
)

// FormatVideo requests a copy of the video with burned-in subtitles.
const FormatVideo = "video"

// ParseFormats splits a comma separated list such as "srt,video".
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" || seen[f] {
			continue
		}
		if f != FormatVideo {
			pf, err := subtitle.ParseFormat(f)
			if err != nil {
				return nil, fmt.Errorf("invalid format %q: choose from video, srt, vtt, ass, txt", part)
			}
			f = string(pf)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output formats given")
	}
	return out, nil
}

// Extractor pulls a speech WAV out of a media file.
type Extractor interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string, opts audio.ExtractOptions) error
}

// Chunker splits a WAV for parallel transcription.
type Chunker interface {
	ChunkAudio(ctx context.Context, audioPath string, chunkDuration time.Duration, outputDir string, concurrency int) ([]audio.ChunkInfo, error)
}

// Burner renders subtitles into a video.
type Burner interface {
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string, cfg style.Config) error
}

// Options for one run.
type Options struct {
	Formats             []string
	Style               style.Config
	IncludeTimestamps   bool
	LegacyASSTimestamps bool
	Enhance             bool

	// ChunkDuration > 0 splits long audio for backends that transcribe
	// chunks concurrently.
	ChunkDuration time.Duration
	Concurrency   int
}

func (o Options) wants(f string) bool {
	for _, x := range o.Formats {
		if x == f {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// FileResult describes what happened to one input.
type FileResult struct {
	Source   string
	Stem     string
	Outputs  map[string]string // format -> path
	Segments int
	Language string
	Status   Status
	Err      error
	Elapsed  time.Duration
}

type Processor struct {
	transcriber transcribe.Transcriber
	extractor   Extractor
	burner      Burner
	chunker     Chunker
	observer    Observer
	logger      *logging.Logger
	now         func() time.Time

	mu    sync.Mutex
	stems map[string]bool
}

type Option func(*Processor)

func WithObserver(o Observer) Option {
	return func(p *Processor) { p.observer = o }
}

func WithLogger(l *logging.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithChunker(c Chunker) Option {
	return func(p *Processor) { p.chunker = c }
}

// WithClock replaces time.Now for output stems.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor wires the capabilities. The burner may be nil when no video
// output is requested; a video request then fails that file.
func NewProcessor(t transcribe.Transcriber, ex Extractor, burner Burner, opts ...Option) (*Processor, error) {
	if t == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if ex == nil {
		return nil, fmt.Errorf("audio extractor is required")
	}
	p := &Processor{
		transcriber: t,
		extractor:   ex,
		burner:      burner,
		observer:    NopObserver{},
		now:         time.Now,
		stems:       make(map[string]bool),
	}
	for _, o := range opts {
		o(p)
	}
	p.logger = logging.OrNop(p.logger)
	if p.observer == nil {
		p.observer = NopObserver{}
	}
	return p, nil
}

// stem returns {name}_{YYYYMMDD_HHMMSS}, with a short uuid suffix when that
// name is already taken in outDir or by another task of this processor.
func (p *Processor) stem(src, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	ts := p.now().Format("20060102_150405")
	base := ts
	if name != "" {
		base = name + "_" + ts
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	stem := base
	for p.stems[stem] || stemUsed(outDir, stem) {
		stem = base + "_" + uuid.NewString()[:8]
	}
	p.stems[stem] = true
	return stem
}

func stemUsed(dir, stem string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), stem+".") || strings.HasPrefix(e.Name(), stem+"_subtitled") {
			return true
		}
	}
	return false
}

// ProcessFile runs the whole flow for src. The returned result is never nil.
// A file whose subtitles were written but whose video could not be produced
// ends with StatusPartial and its mux error.
func (p *Processor) ProcessFile(ctx context.Context, src, outDir string, opts Options) (*FileResult, error) {
	start := time.Now()
	res := &FileResult{Source: src, Outputs: make(map[string]string)}
	name := filepath.Base(src)
	log := p.logger.With("file", name)

	fail := func(err error) (*FileResult, error) {
		res.Status = StatusFailed
		res.Err = err
		res.Elapsed = time.Since(start)
		p.observer.Observe(Event{File: src, Stage: StageFailed, Err: err})
		log.Errorw("processing failed", "kind", string(apperr.KindOf(err)), "error", err)
		return res, err
	}

	if len(opts.Formats) == 0 {
		opts.Formats = []string{string(subtitle.FormatSRT)}
	}
	if _, err := os.Stat(src); err != nil {
		return fail(apperr.New(apperr.Input, src, err))
	}
	if !audio.IsMediaFile(src) {
		return fail(apperr.Newf(apperr.Input, src, "unsupported file type: %s", filepath.Ext(src)))
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	res.Stem = p.stem(src, outDir)
	log.Infow("processing started", "stem", res.Stem)

	tmp, err := os.MkdirTemp("", "altyazi-"+res.Stem+"-")
	if err != nil {
		return fail(fmt.Errorf("failed to create temp directory: %w", err))
	}
	defer os.RemoveAll(tmp)

	p.observer.Observe(Event{File: src, Stage: StageExtracting})
	wav := filepath.Join(tmp, res.Stem+".wav")
	extract := audio.DefaultExtractOptions()
	extract.Enhance = opts.Enhance
	if err := p.extractor.ExtractAudio(ctx, src, wav, extract); err != nil {
		return fail(fmt.Errorf("audio extraction failed: %w", err))
	}

	var chunks []audio.ChunkInfo
	if p.chunker != nil && opts.ChunkDuration > 0 {
		if _, ok := p.transcriber.(transcribe.ConcurrentTranscriber); ok {
			chunks, err = p.chunker.ChunkAudio(ctx, wav, opts.ChunkDuration, filepath.Join(tmp, "chunks"), opts.Concurrency)
			if err != nil {
				return fail(fmt.Errorf("failed to split audio: %w", err))
			}
			log.Debugw("audio split", "chunks", len(chunks))
		}
	}

	p.observer.Observe(Event{File: src, Stage: StageTranscribing})
	tr, err := transcribe.Run(ctx, p.transcriber, wav, chunks, opts.Concurrency)
	if err != nil {
		return fail(fmt.Errorf("transcription failed: %w", err))
	}
	res.Segments = len(tr.Segments)
	res.Language = tr.Language
	log.Infow("transcription complete",
		"segments", res.Segments,
		"language", tr.Language,
	)

	p.observer.Observe(Event{File: src, Stage: StageWriting})
	wopts := subtitle.WriterOptions{
		Style:               opts.Style,
		IncludeTimestamps:   opts.IncludeTimestamps,
		LegacyASSTimestamps: opts.LegacyASSTimestamps,
	}
	for _, f := range subtitle.Formats() {
		if !opts.wants(string(f)) {
			continue
		}
		path := filepath.Join(outDir, res.Stem+f.Extension())
		if err := writeSegments(f, wopts, tr.Segments, path); err != nil {
			return fail(err)
		}
		res.Outputs[string(f)] = path
	}

	if opts.wants(FormatVideo) && audio.IsVideoFile(src) {
		p.observer.Observe(Event{File: src, Stage: StageEmbedding})
		if err := p.embed(ctx, src, outDir, res, wopts, tr.Segments, opts.Style); err != nil {
			res.Status = StatusPartial
			res.Err = err
			res.Elapsed = time.Since(start)
			log.Warnw("subtitles written but video failed", "error", err)
			p.observer.Observe(Event{File: src, Stage: StageDone, Err: err})
			return res, err
		}
	}

	res.Status = StatusSuccess
	res.Elapsed = time.Since(start)
	log.Infow("processing complete",
		"outputs", len(res.Outputs),
		"elapsed", res.Elapsed.Round(time.Millisecond).String(),
	)
	p.observer.Observe(Event{File: src, Stage: StageDone})
	return res, nil
}

// embed burns the ASS file when there is one, else SRT (written on demand).
func (p *Processor) embed(
	ctx context.Context,
	src, outDir string,
	res *FileResult,
	wopts subtitle.WriterOptions,
	segments []subtitle.Segment,
	cfg style.Config,
) error {
	if p.burner == nil {
		return apperr.Newf(apperr.Mux, filepath.Base(src), "no video processor configured")
	}

	subs := res.Outputs[string(subtitle.FormatASS)]
	if subs == "" {
		subs = res.Outputs[string(subtitle.FormatSRT)]
	}
	if subs == "" {
		subs = filepath.Join(outDir, res.Stem+subtitle.FormatSRT.Extension())
		if err := writeSegments(subtitle.FormatSRT, wopts, segments, subs); err != nil {
			return err
		}
		res.Outputs[string(subtitle.FormatSRT)] = subs
	}

	out := filepath.Join(outDir, res.Stem+"_subtitled"+strings.ToLower(filepath.Ext(src)))
	if err := p.burner.BurnSubtitles(ctx, src, subs, out, cfg); err != nil {
		if !errors.Is(err, apperr.Mux) {
			err = apperr.New(apperr.Mux, filepath.Base(src), err)
		}
		return err
	}
	res.Outputs[FormatVideo] = out
	return nil
}

func writeSegments(f subtitle.Format, opts subtitle.WriterOptions, segments []subtitle.Segment, path string) error {
	w, err := subtitle.NewWriter(f, opts)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := w.Write(segments, path); err != nil {
		return fmt.Errorf("failed to write %s subtitles: %w", f, err)
	}
	return nil
}
