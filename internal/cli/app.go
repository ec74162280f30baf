package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/config"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/dubbing"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/ffmpeg"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/translate"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tts"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/video"
)

// app holds the media tooling shared by the commands of one process.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	runner *ffmpeg.Runner
	audio  *audio.Processor
	video  *video.DefaultProcessor
	styles *style.Table
}

func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	paths, err := ffmpeg.Ensure(ffmpeg.Options{
		FFmpegPath:   cfg.FFmpeg.FFmpegPath,
		FFprobePath:  cfg.FFmpeg.FFprobePath,
		AutoDownload: cfg.FFmpeg.AutoDownload,
		CacheDir:     cfg.FFmpeg.CacheDir,
	})
	if err != nil {
		return nil, err
	}
	logger.Debugw("ffmpeg located", "ffmpeg", paths.FFmpeg, "ffprobe", paths.FFprobe)

	runner := ffmpeg.NewRunner(paths, ffmpeg.Timeouts{
		Probe:   seconds(cfg.FFmpeg.ProbeTimeout),
		Extract: seconds(cfg.FFmpeg.ExtractTimeout),
		Mux:     seconds(cfg.FFmpeg.MuxTimeout),
	}, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		runner: runner,
		audio:  audio.NewProcessor(runner, logger),
		video: video.NewProcessor(runner, video.EncodeOptions{
			Preset: cfg.FFmpeg.Preset,
			CRF:    cfg.FFmpeg.CRF,
		}, logger),
		styles: style.NewTable(style.SystemFonts{}),
	}, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// transcription settings after flag overrides
type transcribeSettings struct {
	Provider           string
	Model              string
	Language           string
	TranscriptLanguage string
	Device             string
	APIKey             string
}

func (a *app) transcriber(s transcribeSettings) (*transcribe.Lazy, error) {
	provider := transcribe.Provider(strings.ToLower(s.Provider))
	apiKey := s.APIKey
	if apiKey == "" {
		apiKey = a.cfg.APIKey(string(provider))
	}
	if provider.NeedsKey() && apiKey == "" {
		return nil, fmt.Errorf(
			"API key is required for %s transcription: use --api-key flag or set %s environment variable",
			provider, strings.ToUpper(string(provider))+"_API_KEY",
		)
	}
	if err := validateTranscriptionModel(provider, s.Model); err != nil {
		return nil, err
	}
	if provider == transcribe.ProviderOpenAI && !isValidOpenAITranscriptLanguage(s.TranscriptLanguage) {
		return nil, fmt.Errorf("openai transcription can only output the native language or english, got %q", s.TranscriptLanguage)
	}
	return transcribe.LazyFactory(provider, apiKey, transcribe.Options{
		Language:           s.Language,
		TranscriptLanguage: s.TranscriptLanguage,
		Model:              s.Model,
		Command:            a.cfg.Transcription.WhisperCommand,
		Device:             s.Device,
		Prober:             a.audio,
	}), nil
}

func (a *app) processor(t transcribe.Transcriber, observer pipeline.Observer) (*pipeline.Processor, error) {
	opts := []pipeline.Option{
		pipeline.WithLogger(a.logger),
		pipeline.WithChunker(a.audio),
	}
	if observer != nil {
		opts = append(opts, pipeline.WithObserver(observer))
	}
	return pipeline.NewProcessor(t, a.audio, a.video, opts...)
}

// resolveStyle returns the named preset, or the YAML style file when one
// is given.
func (a *app) resolveStyle(name, file string) (style.Config, error) {
	if file == "" {
		file = a.cfg.Paths.StyleFile
	}
	if file != "" {
		cfg, err := a.styles.LoadFile(file)
		if err != nil {
			return style.Config{}, err
		}
		return cfg, nil
	}
	n, err := style.ParseName(name)
	if err != nil {
		return style.Config{}, err
	}
	return a.styles.Lookup(string(n)), nil
}

// pipelineOptions maps subtitle settings to a pipeline run.
func (a *app) pipelineOptions(formats []string, cfg style.Config, timestamps, enhance bool) pipeline.Options {
	return pipeline.Options{
		Formats:             formats,
		Style:               cfg,
		IncludeTimestamps:   timestamps,
		LegacyASSTimestamps: a.cfg.Subtitles.LegacyASSTimestamps,
		Enhance:             enhance,
		ChunkDuration:       seconds(a.cfg.Transcription.ChunkSeconds),
		Concurrency:         a.cfg.Transcription.Concurrency,
	}
}

type ttsSettings struct {
	Backend string
	Voice   string
	Speed   float64
}

func (a *app) dubber(ctx context.Context, s ttsSettings, reporter dubbing.ProgressReporter) (*dubbing.Dubber, error) {
	backend := tts.Backend(strings.ToLower(s.Backend))
	opts := tts.Options{
		Model:       a.cfg.TTS.Model,
		Voice:       s.Voice,
		Speed:       s.Speed,
		Command:     a.cfg.TTS.Command,
		CommandArgs: a.cfg.TTS.CommandArgs,
		Decoder:     a.audio,
		RateLimit:   a.cfg.TTS.RateLimit,
		Retries:     a.cfg.TTS.Retries,
	}
	apiKey := a.cfg.APIKey(string(backend))
	if backend != tts.BackendEdge && apiKey == "" {
		return nil, fmt.Errorf("%s text-to-speech needs %s_API_KEY", backend, strings.ToUpper(string(backend)))
	}
	synth, err := tts.Factory(ctx, backend, apiKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	if reporter == nil {
		reporter = dubbing.LogReporter{Logger: a.logger}
	}
	asm, err := dubbing.NewAssembler(synth, audio.AdditiveMixer{},
		dubbing.WithLogger(a.logger),
		dubbing.WithReporter(reporter),
	)
	if err != nil {
		return nil, err
	}
	voice := func(info language.Info) tts.Voice {
		return tts.VoiceFor(backend, info, opts)
	}
	return dubbing.NewDubber(asm, a.audio, a.video, voice, dubbing.DubberOptions{
		Workers: a.cfg.Dubbing.Workers,
		Bitrate: a.cfg.Dubbing.Bitrate,
		Logger:  a.logger,
	})
}

// segmentTranslator builds the per-language translator used by dubbing, or
// nil when translation is off.
func (a *app) segmentTranslator(enabled bool, provider, sourceLanguage string) (dubbing.SegmentTranslator, error) {
	if !enabled {
		return nil, nil
	}
	p := translate.Provider(strings.ToLower(provider))
	apiKey := a.cfg.APIKey(string(p))
	if apiKey == "" {
		return nil, fmt.Errorf("translation needs %s", p.KeyEnv())
	}
	input := ""
	if sourceLanguage != "" {
		input = language.EnglishName(sourceLanguage)
	}
	st, err := translate.NewSegmentTranslator(
		translate.ProviderFunc(p, apiKey),
		translate.Options{
			InputLanguage: input,
			Model:         a.cfg.Translation.Model,
			BatchSize:     a.cfg.Translation.BatchSize,
		},
		a.cfg.Translation.Concurrency,
		a.logger,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// dubSegments transcribes src into an SRT unless subtitles are given and
// returns the segments to speak.
func (a *app) dubSegments(
	ctx context.Context,
	src, subtitles, outDir string,
	ts transcribeSettings,
	cfg style.Config,
	enhance bool,
	observer pipeline.Observer,
) (string, []subtitle.Segment, error) {
	if subtitles == "" {
		t, err := a.transcriber(ts)
		if err != nil {
			return "", nil, err
		}
		p, err := a.processor(t, observer)
		if err != nil {
			return "", nil, err
		}
		res, err := p.ProcessFile(ctx, src, outDir, a.pipelineOptions([]string{string(subtitle.FormatSRT)}, cfg, false, enhance))
		if err != nil {
			return "", nil, err
		}
		subtitles = res.Outputs[string(subtitle.FormatSRT)]
	}

	f, err := subtitle.Open(subtitles)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	return subtitles, f.Segments(), nil
}

func languageCodes(list []string) ([]language.Code, error) {
	joined := strings.Join(list, ",")
	if strings.Trim(joined, ", ") == "" {
		return nil, fmt.Errorf("at least one target language is required (supported: %s)", supportedLanguages())
	}
	return language.ParseList(joined)
}

func supportedLanguages() string {
	codes := language.Codes()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
