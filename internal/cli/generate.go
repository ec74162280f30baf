package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [media_file|directory]",
	Short: "Generate subtitles for an audio or video file",
	Long: `Generate subtitles for the specified audio or video file.

The command accepts both audio files (mp3, wav, aac, etc.) and video files (mp4, mkv, etc.).
For video files, audio is extracted before transcription and the subtitles
can be burned into a copy of the video ("video" format).

Transcription runs on a local whisper install by default; gemini and openai
are available as hosted providers.

Examples:
  altyazi generate video.mp4
  altyazi generate video.mp4 --formats srt,vtt,ass --style cinema
  altyazi generate podcast.mp3 --formats txt --include-timestamps
  altyazi generate ./videos --batch --workers 2 -o ./subtitles
  altyazi generate video.mp4 --provider gemini --chunk-seconds 60`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsFFmpeg,
	RunE:        runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().
		Bool("batch", false, "Process every media file in the input directory")
	cmd.Flags().
		StringP("formats", "f", "", "Comma separated outputs: video, srt, vtt, ass, txt (default from config)")
	cmd.Flags().
		String("style", "", "Subtitle style preset (default, bold, elegant, cinema, modern, minimal, terminal)")
	cmd.Flags().
		String("style-file", "", "YAML file overriding a style preset")
	cmd.Flags().
		String("provider", "", "Transcription provider (whisper, gemini, openai)")
	cmd.Flags().
		String("model", "", "Model for the transcription provider (e.g. base, gemini-2.5-flash, whisper-1)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key for hosted providers (or set GEMINI_API_KEY/OPENAI_API_KEY)")
	cmd.Flags().
		String("transcript-language", "native", "Output language for transcript ('native' keeps the spoken language)")
	cmd.Flags().
		String("device", "", "Whisper device (cpu, cuda)")
	cmd.Flags().
		Bool("include-timestamps", false, "Prefix TXT lines with timestamps")
	cmd.Flags().
		Bool("no-audio-enhance", false, "Skip loudness and denoise filters during audio extraction")
	cmd.Flags().
		Int("workers", 1, "Files processed in parallel in batch mode")
	cmd.Flags().
		Int("chunk-seconds", -1, "Split audio into chunks of this many seconds for hosted providers (0 disables)")
	cmd.Flags().
		Int("concurrency", 0, "Parallel chunk transcriptions (default from config)")
}

type generateSettings struct {
	batch       bool
	formats     []string
	styleName   string
	styleFile   string
	transcribe  transcribeSettings
	timestamps  bool
	enhance     bool
	outDir      string
	workers     int
	chunk       int
	concurrency int
}

// generateFlags merges flags over the loaded config.
func generateFlags(cmd *cobra.Command) (generateSettings, error) {
	flags := cmd.Flags()
	s := generateSettings{
		formats:   cfg.Subtitles.Formats,
		styleName: cfg.Subtitles.Style,
		transcribe: transcribeSettings{
			Provider: cfg.Transcription.Provider,
			Model:    cfg.Transcription.Model,
			Language: cfg.Transcription.Language,
			Device:   cfg.Transcription.Device,
		},
		timestamps:  cfg.Subtitles.IncludeTimestamps,
		enhance:     cfg.Subtitles.EnhanceAudio,
		outDir:      cfg.Paths.OutputDir,
		chunk:       cfg.Transcription.ChunkSeconds,
		concurrency: cfg.Transcription.Concurrency,
	}

	s.batch, _ = flags.GetBool("batch")
	s.workers, _ = flags.GetInt("workers")
	s.styleFile, _ = flags.GetString("style-file")
	s.transcribe.APIKey, _ = flags.GetString("api-key")
	s.transcribe.TranscriptLanguage, _ = flags.GetString("transcript-language")

	if flags.Changed("formats") {
		raw, _ := flags.GetString("formats")
		parsed, err := pipeline.ParseFormats(raw)
		if err != nil {
			return s, err
		}
		s.formats = parsed
	}
	if flags.Changed("style") {
		s.styleName, _ = flags.GetString("style")
	}
	if flags.Changed("provider") {
		provider, _ := flags.GetString("provider")
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider != s.transcribe.Provider {
			// the configured model belongs to the configured provider
			s.transcribe.Model = ""
		}
		s.transcribe.Provider = provider
	}
	if flags.Changed("model") {
		s.transcribe.Model, _ = flags.GetString("model")
	}
	if flags.Changed("device") {
		s.transcribe.Device, _ = flags.GetString("device")
	}
	if flags.Changed("language") {
		lang, _ := flags.GetString("language")
		s.transcribe.Language = lang
	}
	if s.transcribe.Language != "" && !strings.EqualFold(s.transcribe.Language, "auto") {
		code, err := language.Parse(s.transcribe.Language)
		if err != nil {
			return s, err
		}
		s.transcribe.Language = string(code)
	} else {
		s.transcribe.Language = ""
	}
	if flags.Changed("include-timestamps") {
		s.timestamps, _ = flags.GetBool("include-timestamps")
	}
	if off, _ := flags.GetBool("no-audio-enhance"); off {
		s.enhance = false
	}
	if out, _ := flags.GetString("output"); out != "" {
		s.outDir = out
	}
	if flags.Changed("chunk-seconds") {
		s.chunk, _ = flags.GetInt("chunk-seconds")
	}
	if flags.Changed("concurrency") {
		s.concurrency, _ = flags.GetInt("concurrency")
	}

	if s.workers <= 0 {
		return s, fmt.Errorf("workers must be positive, got %d", s.workers)
	}
	if s.chunk < 0 {
		return s, fmt.Errorf("chunk-seconds must not be negative, got %d", s.chunk)
	}
	if s.concurrency <= 0 {
		return s, fmt.Errorf("concurrency must be positive, got %d", s.concurrency)
	}
	return s, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := generateFlags(cmd)
	if err != nil {
		return err
	}

	inputs, err := pipeline.CollectInputs(args[0], s.batch)
	if err != nil {
		return err
	}

	a := tools
	a.cfg.Transcription.ChunkSeconds = s.chunk
	a.cfg.Transcription.Concurrency = s.concurrency

	styleCfg, err := a.resolveStyle(s.styleName, s.styleFile)
	if err != nil {
		return err
	}
	t, err := a.transcriber(s.transcribe)
	if err != nil {
		return err
	}
	p, err := a.processor(t, pipeline.LogObserver{Logger: logger})
	if err != nil {
		return err
	}
	opts := a.pipelineOptions(s.formats, styleCfg, s.timestamps, s.enhance)

	logger.Infow("Starting subtitle generation",
		"inputs", len(inputs),
		"output_dir", s.outDir,
		"formats", strings.Join(s.formats, ","),
		"provider", s.transcribe.Provider,
		"model", s.transcribe.Model,
		"language", s.transcribe.Language,
	)
	if transcribe.Provider(s.transcribe.Provider) == transcribe.ProviderWhisper {
		logEstimate(ctx, a, inputs, s.transcribe.Model)
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(inputs) == 1 && !s.batch {
		res, err := p.ProcessFile(ctx, inputs[0], s.outDir, opts)
		if err != nil && res.Status != pipeline.StatusPartial {
			return err
		}
		printResult(res)
		return nil
	}

	report := p.Batch(ctx, inputs, s.outDir, opts, s.workers)
	if err := pipeline.RenderSummary(os.Stdout, report); err != nil {
		return err
	}
	if failed := report.Count(pipeline.StatusFailed); failed == len(report.Results) {
		return fmt.Errorf("all %d files failed", failed)
	}
	return nil
}

func logEstimate(ctx context.Context, a *app, inputs []string, model string) {
	if model == "" {
		model = "base"
	}
	var total time.Duration
	for _, in := range inputs {
		d, err := a.audio.GetDuration(ctx, in)
		if err != nil {
			continue
		}
		total += d
	}
	if total == 0 {
		return
	}
	est := transcribe.EstimateTime(total.Seconds(), model)
	logger.Infow("Estimated transcription time",
		"audio", total.Round(time.Second).String(),
		"model", model,
		"estimate", (time.Duration(est) * time.Second).String(),
	)
}

func printResult(res *pipeline.FileResult) {
	fmt.Printf("Subtitles generated: %s\n", absPath(res.Source))
	fmt.Printf("  Status: %s\n", res.Status)
	fmt.Printf("  Segments: %d\n", res.Segments)
	if res.Language != "" {
		fmt.Printf("  Language: %s (%s)\n", language.NativeName(res.Language), res.Language)
	}
	for _, f := range pipeline.FormatOrder(res.Outputs) {
		fmt.Printf("  %s: %s\n", strings.ToUpper(f), absPath(res.Outputs[f]))
	}
	if res.Err != nil {
		fmt.Printf("  Warning: %v\n", res.Err)
	}
	fmt.Printf("  Time: %s\n", res.Elapsed.Round(100*time.Millisecond))
}
