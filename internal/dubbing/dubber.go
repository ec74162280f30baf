package dubbing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
	"golang.org/x/sync/errgroup"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tts"
)

const defaultBitrate = "192k"

// Media is the audio side of ffmpeg. *audio.Processor satisfies it.
type Media interface {
	GetDuration(ctx context.Context, path string) (time.Duration, error)
	Decode(ctx context.Context, path string, rate beep.SampleRate) (*audio.Track, error)
	EncodeMP3(ctx context.Context, t *audio.Track, outputPath, bitrate string) error
}

// Muxer writes videos. *video.DefaultProcessor satisfies it.
type Muxer interface {
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string, cfg style.Config) error
}

// SegmentTranslator rewrites segment text into another language, keeping
// the timing.
type SegmentTranslator interface {
	TranslateSegments(ctx context.Context, segments []subtitle.Segment, target language.Info) ([]subtitle.Segment, error)
}

// VoiceFunc picks the TTS voice for a language.
type VoiceFunc func(language.Info) tts.Voice

type Job struct {
	VideoPath string
	// burned into the final video when no translation happens
	SubtitlePath string
	Segments     []subtitle.Segment
	Languages    []language.Code
	OutputDir    string

	BurnSubtitles bool
	Style         style.Config
	Mix           audio.MixSpec

	// optional
	Translator SegmentTranslator
	// prefix of every output name; derived from the video name and the
	// current time when empty
	Stem string
}

type LanguageStatus string

const (
	LanguageSucceeded LanguageStatus = "success"
	// speech video written, subtitle burn-in failed
	LanguagePartial LanguageStatus = "partial"
	LanguageFailed  LanguageStatus = "failed"
)

type LanguageResult struct {
	Language     language.Code
	Stem         string
	Status       LanguageStatus
	TTSAudio     string
	VideoWithTTS string
	FinalVideo   string
	Subtitles    string
	Segments     []SegmentReport
	Err          error
}

type Report struct {
	Results []LanguageResult
}

// Count returns how many languages ended with status s.
func (r *Report) Count(s LanguageStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Errors lists every per-language error.
func (r *Report) Errors() []error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}

type DubberOptions struct {
	// languages processed at once
	Workers int
	Bitrate string
	Logger  *logging.Logger
	// replaces time.Now for output stems
	Clock func() time.Time
}

// Dubber runs one assembly per language with bounded parallelism.
type Dubber struct {
	assembler *Assembler
	media     Media
	muxer     Muxer
	voice     VoiceFunc
	workers   int
	bitrate   string
	logger    *logging.Logger
	now       func() time.Time

	mu    sync.Mutex
	stems map[string]bool
}

func NewDubber(asm *Assembler, media Media, muxer Muxer, voice VoiceFunc, opts DubberOptions) (*Dubber, error) {
	switch {
	case asm == nil:
		return nil, fmt.Errorf("assembler is required")
	case media == nil:
		return nil, fmt.Errorf("media processor is required")
	case muxer == nil:
		return nil, fmt.Errorf("muxer is required")
	case voice == nil:
		return nil, fmt.Errorf("voice selector is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Bitrate == "" {
		opts.Bitrate = defaultBitrate
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Dubber{
		assembler: asm,
		media:     media,
		muxer:     muxer,
		voice:     voice,
		workers:   opts.Workers,
		bitrate:   opts.Bitrate,
		logger:    logging.OrNop(opts.Logger),
		now:       opts.Clock,
		stems:     make(map[string]bool),
	}, nil
}

// output name parts following the stem
const (
	outSubtitles = "_subtitles_"
	outTTSAudio  = "_tts_audio_"
	outWithTTS   = "_video_with_tts_"
	outFinal     = "_final_video_"
)

// stem returns {video name}_{YYYYMMDD_HHMMSS}, with a short uuid suffix when
// outputs with that stem already exist in outDir or another run of this
// dubber holds it.
func (d *Dubber) stem(videoPath, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	base := d.now().Format("20060102_150405")
	if name != "" {
		base = name + "_" + base
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	stem := base
	for d.stems[stem] || stemUsed(outDir, stem) {
		stem = base + "_" + uuid.NewString()[:8]
	}
	d.stems[stem] = true
	return stem
}

func stemUsed(dir, stem string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		for _, part := range []string{outSubtitles, outTTSAudio, outWithTTS, outFinal} {
			if strings.HasPrefix(e.Name(), stem+part) {
				return true
			}
		}
	}
	return false
}

func outputName(stem, part string, code language.Code, ext string) string {
	return stem + part + string(code) + ext
}

// Run dubs job.VideoPath into every requested language. A failing language
// is recorded in the report and does not stop the others; the returned
// error covers only problems shared by all languages.
func (d *Dubber) Run(ctx context.Context, job Job) (*Report, error) {
	if len(job.Languages) == 0 {
		return nil, apperr.Newf(apperr.Input, job.VideoPath, "no target languages")
	}
	if len(job.Segments) == 0 {
		return nil, apperr.Newf(apperr.Input, job.VideoPath, "no subtitle segments found")
	}
	if err := job.Mix.Validate(); err != nil {
		return nil, apperr.New(apperr.Input, job.VideoPath, err)
	}

	total, err := d.media.GetDuration(ctx, job.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("could not get video duration: %w", err)
	}
	if span := subtitle.Span(job.Segments); span > total {
		d.logger.Warnw("segments run past the end of the video, trailing speech is cut",
			"video", filepath.Base(job.VideoPath),
			"span", span,
			"duration", total,
		)
	}
	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if job.Stem == "" {
		job.Stem = d.stem(job.VideoPath, job.OutputDir)
	}

	var original *audio.Track
	if job.Mix.OriginalRatio > 0 {
		original, err = d.media.Decode(ctx, job.VideoPath, audio.DefaultRate)
		if err != nil {
			d.logger.Warnw("original audio unavailable, mixing speech only",
				"video", job.VideoPath,
				"error", err,
			)
			original = nil
		}
	}

	d.logger.Infow("dubbing video",
		"video", filepath.Base(job.VideoPath),
		"segments", len(job.Segments),
		"languages", len(job.Languages),
		"duration", total.Round(10*time.Millisecond),
		"stem", job.Stem,
	)

	results := make([]LanguageResult, len(job.Languages))

	// no shared cancellation: one language failing leaves the rest running
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, code := range job.Languages {
		g.Go(func() error {
			res := d.dubLanguage(ctx, job, code, total, original)
			if res.Err != nil {
				d.logger.Warnw("language failed",
					"language", code,
					"status", res.Status,
					"kind", string(apperr.KindOf(res.Err)),
					"error", res.Err,
				)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Results: results}, nil
}

func (d *Dubber) dubLanguage(
	ctx context.Context,
	job Job,
	code language.Code,
	total time.Duration,
	original *audio.Track,
) LanguageResult {
	res := LanguageResult{Language: code, Stem: job.Stem, Status: LanguageFailed}
	log := d.logger.With("language", code)

	info, err := language.Lookup(string(code))
	if err != nil {
		res.Err = apperr.New(apperr.Input, string(code), err)
		return res
	}

	tmp, err := os.MkdirTemp("", "altyazi-dub-"+string(code)+"-*")
	if err != nil {
		res.Err = fmt.Errorf("create temp dir: %w", err)
		return res
	}
	defer func() {
		_ = os.RemoveAll(tmp)
	}()

	segments := job.Segments
	subtitlePath := job.SubtitlePath
	if job.Translator != nil {
		segments, err = job.Translator.TranslateSegments(ctx, job.Segments, info)
		if err != nil {
			res.Err = fmt.Errorf("translate to %s: %w", code, err)
			return res
		}
		subtitlePath = filepath.Join(job.OutputDir, outputName(job.Stem, outSubtitles, code, ".srt"))
		if err := writeSRT(segments, subtitlePath, job.Style); err != nil {
			res.Err = err
			return res
		}
		res.Subtitles = subtitlePath
	}

	result, err := d.assembler.Assemble(ctx, Request{
		Segments: segments,
		Total:    total,
		Voice:    d.voice(info),
		Original: original,
		Mix:      job.Mix,
	})
	if err != nil {
		res.Err = fmt.Errorf("failed to create TTS audio for %s: %w", code, err)
		return res
	}
	res.Segments = result.Segments
	switch {
	case result.Inserted() == 0 && result.Failed() > 0:
		res.Err = apperr.Newf(apperr.Synthesis, string(code), "no segment could be synthesized (%d failed)", result.Failed())
		return res
	case result.Inserted() == 0:
		log.Warnw("every segment was skipped, the dub track carries no speech",
			"skipped", len(result.Segments),
		)
	}

	wavPath := filepath.Join(tmp, fmt.Sprintf("tts_audio_%s.wav", code))
	if err := audio.WriteWAV(wavPath, result.Track); err != nil {
		res.Err = err
		return res
	}

	mp3Path := filepath.Join(job.OutputDir, outputName(job.Stem, outTTSAudio, code, ".mp3"))
	if err := d.media.EncodeMP3(ctx, result.Track, mp3Path, d.bitrate); err != nil {
		res.Err = err
		return res
	}
	res.TTSAudio = mp3Path

	withTTS := filepath.Join(job.OutputDir, outputName(job.Stem, outWithTTS, code, ".mp4"))
	if err := d.muxer.ReplaceAudio(ctx, job.VideoPath, wavPath, withTTS); err != nil {
		res.Err = err
		return res
	}
	res.VideoWithTTS = withTTS
	res.FinalVideo = withTTS
	res.Status = LanguageSucceeded

	if job.BurnSubtitles {
		if subtitlePath == "" {
			subtitlePath = filepath.Join(tmp, fmt.Sprintf("subtitles_%s.srt", code))
			if err := writeSRT(segments, subtitlePath, job.Style); err != nil {
				res.Status = LanguagePartial
				res.Err = err
				return res
			}
		}
		final := filepath.Join(job.OutputDir, outputName(job.Stem, outFinal, code, "_with_subtitles.mp4"))
		if err := d.muxer.BurnSubtitles(ctx, withTTS, subtitlePath, final, job.Style); err != nil {
			log.Warnw("subtitle embedding failed, keeping video without subtitles", "error", err)
			res.Status = LanguagePartial
			res.Err = err
			return res
		}
		res.FinalVideo = final
	}

	log.Infow("language done",
		"inserted", result.Inserted(),
		"failed", result.Failed(),
		"output", filepath.Base(res.FinalVideo),
	)
	return res
}

func writeSRT(segments []subtitle.Segment, path string, cfg style.Config) error {
	w, err := subtitle.NewWriter(subtitle.FormatSRT, subtitle.WriterOptions{Style: cfg})
	if err != nil {
		return err
	}
	return w.Write(segments, path)
}
