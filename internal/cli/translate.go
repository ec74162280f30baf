package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate a subtitle file with an LLM",
	Long: `Translate an existing SRT, VTT or ASS/SSA file into another language.

ASS files keep their script info, styles and override tags; only the
dialogue text changes. With --overlay every cue shows the translation
above the original line.

Examples:
  altyazi translate film.srt -t tr
  altyazi translate film.ass -t japanese --overlay
  altyazi translate film.vtt -l en -t es -o film.es.vtt
  altyazi translate film.srt -t german --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	addTranslateFlags(translateCmd)
	_ = translateCmd.MarkFlagRequired("target-language")
}

func addTranslateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("target-language", "t", "", "Target language, as a code (tr) or a name (Turkish)")
	f.Bool("overlay", false, "Keep the original line under the translation")
	f.StringP("api-key", "k", "", "API key (default: the provider's *_API_KEY variable)")
	f.String("provider", "", "Translation provider: gemini, openai or anthropic (default from config)")
	f.String("model", "", "Provider model (default from config or the provider default)")
	f.Bool("model-override", false, "Accept any model name without validation")
	f.Int("concurrency", 0, "Parallel requests (default from config)")
	f.Int("batch-size", 0, "Subtitle entries per request (default from config)")
}

type translateSettings struct {
	target        string // as given, used in the output name
	targetName    string // English name sent to the model
	inputName     string
	overlay       bool
	provider      translate.Provider
	model         string
	modelOverride bool
	apiKey        string
	concurrency   int
	batchSize     int
	output        string
}

// translateFlags merges flags over the translation config section.
func translateFlags(cmd *cobra.Command) (translateSettings, error) {
	flags := cmd.Flags()
	s := translateSettings{
		provider:    translate.Provider(cfg.Translation.Provider),
		model:       cfg.Translation.Model,
		concurrency: cfg.Translation.Concurrency,
		batchSize:   cfg.Translation.BatchSize,
	}

	target, _ := flags.GetString("target-language")
	input, _ := flags.GetString("language")
	s.overlay, _ = flags.GetBool("overlay")
	s.apiKey, _ = flags.GetString("api-key")
	s.modelOverride, _ = flags.GetBool("model-override")
	s.output, _ = flags.GetString("output")

	if flags.Changed("provider") {
		p, _ := flags.GetString("provider")
		p = strings.ToLower(strings.TrimSpace(p))
		if p != string(s.provider) {
			s.model = ""
		}
		s.provider = translate.Provider(p)
	}
	if flags.Changed("model") {
		s.model, _ = flags.GetString("model")
	}
	if flags.Changed("concurrency") {
		s.concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("batch-size") {
		s.batchSize, _ = flags.GetInt("batch-size")
	}

	s.target = strings.ToLower(strings.TrimSpace(target))
	if s.target == "" {
		return s, fmt.Errorf("target language is required")
	}
	s.targetName = languageName(s.target)
	if input = strings.TrimSpace(input); input != "" && input != "auto" {
		s.inputName = languageName(input)
		if strings.EqualFold(s.inputName, s.targetName) {
			return s, fmt.Errorf("input language %q and target language %q cannot be the same", input, target)
		}
	}

	if s.concurrency <= 0 {
		return s, fmt.Errorf("concurrency must be positive, got %d", s.concurrency)
	}
	if s.batchSize <= 0 {
		return s, fmt.Errorf("batch-size must be positive, got %d", s.batchSize)
	}
	switch s.provider {
	case translate.ProviderGemini, translate.ProviderOpenAI, translate.ProviderAnthropic:
	default:
		return s, fmt.Errorf("unsupported translation provider %q", s.provider)
	}
	if !s.modelOverride {
		if err := validateTranslationModel(s.provider, s.model); err != nil {
			return s, err
		}
	}
	return s, nil
}

// languageName turns a supported code into its English name and leaves
// free-form names alone.
func languageName(s string) string {
	if code, err := language.Parse(s); err == nil {
		return language.EnglishName(string(code))
	}
	return s
}

func runTranslate(cmd *cobra.Command, args []string) error {
	src := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := translateFlags(cmd)
	if err != nil {
		return err
	}
	if !fileExists(src) {
		return fmt.Errorf("subtitle file not found: %s", src)
	}
	if s.apiKey == "" {
		s.apiKey = cfg.APIKey(string(s.provider))
	}
	if s.apiKey == "" {
		return fmt.Errorf("API key is required: use --api-key flag or set %s environment variable", s.provider.KeyEnv())
	}
	if s.output == "" {
		s.output = translate.OutputPath(src, s.target, s.overlay)
	}

	file, err := subtitle.Open(src)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	logger.Infow("translating subtitles",
		"input", src,
		"output", s.output,
		"format", file.Format(),
		"entries", len(file.Segments()),
		"target_language", s.targetName,
		"provider", s.provider,
		"model", s.model,
	)

	translator, err := translate.Factory(ctx, s.provider, s.apiKey, translate.Options{
		InputLanguage:  s.inputName,
		TargetLanguage: s.targetName,
		Model:          s.model,
		BatchSize:      s.batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	n, err := translate.TranslateFile(ctx, translator, file, translate.FileOptions{
		Overlay:     s.overlay,
		Concurrency: s.concurrency,
	}, logger)
	if err != nil {
		return err
	}
	if err := file.Write(s.output); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtitles translated: %s\n", absPath(s.output))
	fmt.Fprintf(out, "  Entries: %d\n", n)
	fmt.Fprintf(out, "  Target language: %s\n", s.targetName)
	if s.overlay {
		fmt.Fprintln(out, "  Mode: bilingual overlay")
	}
	return nil
}
