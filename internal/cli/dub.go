package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/dubbing"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
)

var dubCmd = &cobra.Command{
	Use:   "dub [video_file]",
	Short: "Dub a video into other languages with text-to-speech",
	Long: `Create a dubbed copy of a video for every target language.

The video is transcribed first unless --subtitles points at an existing
SRT, VTT or ASS file. Each segment is spoken with the language's voice,
sped up when it does not fit its time slot, and mixed over the original
audio. For every language the command writes {stem}_tts_audio_{lang}.mp3,
{stem}_video_with_tts_{lang}.mp4 and, unless --no-burn is given,
{stem}_final_video_{lang}_with_subtitles.mp4. The stem is the video name
plus a timestamp, with a short random suffix when that name is taken.

Examples:
  altyazi dub video.mp4 --languages en,de
  altyazi dub video.mp4 --languages ja --subtitles video.srt --translate
  altyazi dub video.mp4 --languages fr --tts openai --voice alloy --original-volume 0`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsFFmpeg,
	RunE:        runDub,
}

func init() {
	rootCmd.AddCommand(dubCmd)

	dubCmd.Flags().
		StringSlice("languages", nil, "Target language codes (default from config)")
	dubCmd.Flags().
		String("subtitles", "", "Use this subtitle file instead of transcribing")
	dubCmd.Flags().
		String("tts", "", "Speech backend (edge, openai, gemini)")
	dubCmd.Flags().
		String("voice", "", "Voice override for every language")
	dubCmd.Flags().
		Float64("speed", 0, "Speech speed multiplier (default from config)")
	dubCmd.Flags().
		Float64("original-volume", -1, "Volume of the original audio under the speech, 0 to 1")
	dubCmd.Flags().
		Bool("no-burn", false, "Do not burn subtitles into the dubbed videos")
	dubCmd.Flags().
		Bool("translate", false, "Translate the subtitles into each target language before speaking")
	dubCmd.Flags().
		String("translation-provider", "", "Translation provider (gemini, openai, anthropic)")
	dubCmd.Flags().
		String("style", "", "Subtitle style preset for burned subtitles")
	dubCmd.Flags().
		String("style-file", "", "YAML file overriding a style preset")
	dubCmd.Flags().
		String("provider", "", "Transcription provider (whisper, gemini, openai)")
	dubCmd.Flags().
		String("model", "", "Transcription model")
}

// dubSettings is everything a dubbing run needs after flags and config
// are merged.
type dubSettings struct {
	Languages         []language.Code
	Subtitles         string
	Transcribe        transcribeSettings
	TTS               ttsSettings
	Style             style.Config
	OriginalRatio     float64
	Burn              bool
	Translate         bool
	TranslateProvider string
	Enhance           bool
}

// dub transcribes (unless subtitles are given) and dubs src into every
// language of s.
func (a *app) dub(
	ctx context.Context,
	src, outDir string,
	s dubSettings,
	observer pipeline.Observer,
	reporter dubbing.ProgressReporter,
) (*dubbing.Report, error) {
	if !audio.IsVideoFile(src) {
		return nil, apperr.Newf(apperr.Input, src, "dubbing needs a video file")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	subs, segments, err := a.dubSegments(ctx, src, s.Subtitles, outDir, s.Transcribe, s.Style, s.Enhance, observer)
	if err != nil {
		return nil, err
	}

	translator, err := a.segmentTranslator(s.Translate, s.TranslateProvider, s.Transcribe.Language)
	if err != nil {
		return nil, err
	}
	d, err := a.dubber(ctx, s.TTS, reporter)
	if err != nil {
		return nil, err
	}

	return d.Run(ctx, dubbing.Job{
		VideoPath:     src,
		SubtitlePath:  subs,
		Segments:      segments,
		Languages:     s.Languages,
		OutputDir:     outDir,
		BurnSubtitles: s.Burn,
		Style:         s.Style,
		Mix:           audio.MixSpec{OriginalRatio: s.OriginalRatio},
		Translator:    translator,
	})
}

func dubFlags(cmd *cobra.Command) (dubSettings, string, error) {
	flags := cmd.Flags()
	s := dubSettings{
		Transcribe: transcribeSettings{
			Provider: cfg.Transcription.Provider,
			Model:    cfg.Transcription.Model,
			Language: cfg.Transcription.Language,
			Device:   cfg.Transcription.Device,
		},
		TTS: ttsSettings{
			Backend: cfg.TTS.Backend,
			Voice:   cfg.TTS.Voice,
			Speed:   cfg.TTS.Speed,
		},
		OriginalRatio:     cfg.Dubbing.OriginalRatio,
		Burn:              cfg.Dubbing.BurnSubtitles,
		Translate:         cfg.Dubbing.Translate,
		TranslateProvider: cfg.Translation.Provider,
		Enhance:           cfg.Subtitles.EnhanceAudio,
	}

	langs := cfg.Dubbing.Languages
	if flags.Changed("languages") {
		langs, _ = flags.GetStringSlice("languages")
	}
	codes, err := languageCodes(langs)
	if err != nil {
		return s, "", err
	}
	s.Languages = codes

	s.Subtitles, _ = flags.GetString("subtitles")
	if s.Subtitles != "" && !fileExists(s.Subtitles) {
		return s, "", fmt.Errorf("subtitle file not found: %s", s.Subtitles)
	}

	if flags.Changed("tts") {
		backend, _ := flags.GetString("tts")
		backend = strings.ToLower(strings.TrimSpace(backend))
		if backend != s.TTS.Backend {
			s.TTS.Voice = ""
		}
		s.TTS.Backend = backend
	}
	if flags.Changed("voice") {
		s.TTS.Voice, _ = flags.GetString("voice")
	}
	if flags.Changed("speed") {
		s.TTS.Speed, _ = flags.GetFloat64("speed")
	}
	if s.TTS.Speed <= 0 {
		return s, "", fmt.Errorf("speed must be positive, got %v", s.TTS.Speed)
	}
	if flags.Changed("original-volume") {
		s.OriginalRatio, _ = flags.GetFloat64("original-volume")
	}
	if err := (audio.MixSpec{OriginalRatio: s.OriginalRatio}).Validate(); err != nil {
		return s, "", err
	}
	if off, _ := flags.GetBool("no-burn"); off {
		s.Burn = false
	}
	if flags.Changed("translate") {
		s.Translate, _ = flags.GetBool("translate")
	}
	if flags.Changed("translation-provider") {
		s.TranslateProvider, _ = flags.GetString("translation-provider")
	}

	if flags.Changed("provider") {
		provider, _ := flags.GetString("provider")
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider != s.Transcribe.Provider {
			s.Transcribe.Model = ""
		}
		s.Transcribe.Provider = provider
	}
	if flags.Changed("model") {
		s.Transcribe.Model, _ = flags.GetString("model")
	}
	if flags.Changed("language") {
		s.Transcribe.Language, _ = flags.GetString("language")
	}
	if s.Transcribe.Language != "" && !strings.EqualFold(s.Transcribe.Language, "auto") {
		code, err := language.Parse(s.Transcribe.Language)
		if err != nil {
			return s, "", err
		}
		s.Transcribe.Language = string(code)
	} else {
		s.Transcribe.Language = ""
	}

	styleName := cfg.Subtitles.Style
	if flags.Changed("style") {
		styleName, _ = flags.GetString("style")
	}
	styleFile, _ := flags.GetString("style-file")
	st, err := tools.resolveStyle(styleName, styleFile)
	if err != nil {
		return s, "", err
	}
	s.Style = st

	outDir := cfg.Paths.OutputDir
	if out, _ := flags.GetString("output"); out != "" {
		outDir = out
	}
	return s, outDir, nil
}

func runDub(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videoPath := args[0]
	if !fileExists(videoPath) {
		return apperr.Newf(apperr.Input, videoPath, "file not found")
	}

	s, outDir, err := dubFlags(cmd)
	if err != nil {
		return err
	}

	logger.Infow("Starting dubbing",
		"video", videoPath,
		"languages", len(s.Languages),
		"tts", s.TTS.Backend,
		"translate", s.Translate,
		"output_dir", outDir,
	)

	report, err := tools.dub(ctx, videoPath, outDir, s, pipeline.LogObserver{Logger: logger}, nil)
	if err != nil {
		return err
	}
	if err := renderDubReport(os.Stdout, report); err != nil {
		return err
	}
	if report.Count(dubbing.LanguageFailed) == len(report.Results) {
		return fmt.Errorf("dubbing failed for every language: %w", errors.Join(report.Errors()...))
	}
	return nil
}

func renderDubReport(w io.Writer, report *dubbing.Report) error {
	color := pipeline.IsTerminal(w)

	tw := table.NewWriter()
	if color {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.AppendHeader(table.Row{"Language", "Status", "Spoken", "Failed", "Output"})

	for _, res := range report.Results {
		inserted, failed := 0, 0
		for _, seg := range res.Segments {
			switch seg.Status {
			case dubbing.StatusInserted:
				inserted++
			case dubbing.StatusFailed:
				failed++
			}
		}
		status := string(res.Status)
		if color {
			status = dubStatusColor(res.Status).Sprint(status)
		}
		output := filepath.Base(res.FinalVideo)
		if res.FinalVideo == "" {
			output = "-"
		}
		if res.Err != nil {
			output += " (" + firstLine(res.Err.Error()) + ")"
		}
		tw.AppendRow(table.Row{
			fmt.Sprintf("%s %s", res.Language, language.NativeName(string(res.Language))),
			status,
			inserted,
			failed,
			output,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 70},
	})

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Completed: %d of %d languages (%d partial)\n",
		report.Count(dubbing.LanguageSucceeded), len(report.Results), report.Count(dubbing.LanguagePartial))
	return err
}

func dubStatusColor(s dubbing.LanguageStatus) text.Colors {
	switch s {
	case dubbing.LanguageSucceeded:
		return text.Colors{text.FgGreen}
	case dubbing.LanguagePartial:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 80 {
		msg = msg[:77] + "..."
	}
	return msg
}
