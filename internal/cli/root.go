package cli

import (
	"fmt"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/config"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	envFile    string

	cfg    *config.Config
	logger *logging.Logger
	tools  *app
)

// needsFFmpeg marks commands that locate ffmpeg before running.
var needsFFmpeg = map[string]string{"ffmpeg": "required"}

var rootCmd = &cobra.Command{
	Use:   "altyazi",
	Short: "Subtitle generator and multilingual dubbing tool for videos",
	Long: `altyazi transcribes audio and video files into SRT, VTT, ASS and TXT
subtitles, burns styled subtitles into videos, translates subtitle files
and dubs videos into other languages with text-to-speech.

Configuration is read from ~/.config/altyazi/config.toml or ./altyazi.toml
when present. API keys come from GEMINI_API_KEY, OPENAI_API_KEY and
ANTHROPIC_API_KEY, optionally loaded from a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}

	loaded, path, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if verbose {
		logger = logging.NewLogger(true)
	} else {
		logger, err = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
	}
	if exists {
		logger.Debugw("config loaded", "path", path)
	}

	if cmd.Annotations["ffmpeg"] != "" {
		tools, err = newApp(cfg, logger)
		if err != nil {
			return err
		}
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
