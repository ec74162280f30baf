package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeSubtitles()
	c.normalizeProviders()
	c.normalizeKeys()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TaskDB) == "" {
		c.Paths.TaskDB = defaultTaskDB
	}
	if c.Paths.TaskDB, err = expandPath(c.Paths.TaskDB); err != nil {
		return fmt.Errorf("paths.task_db: %w", err)
	}
	if c.Paths.StyleFile, err = expandPath(c.Paths.StyleFile); err != nil {
		return fmt.Errorf("paths.style_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if v, ok := os.LookupEnv("ALTYAZI_FFMPEG_PATH"); ok && c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("ALTYAZI_FFPROBE_PATH"); ok && c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = strings.TrimSpace(v)
	}
	c.FFmpeg.Preset = strings.TrimSpace(c.FFmpeg.Preset)
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
}

func (c *Config) normalizeSubtitles() {
	formats := make([]string, 0, len(c.Subtitles.Formats))
	for _, f := range c.Subtitles.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			formats = append(formats, f)
		}
	}
	c.Subtitles.Formats = formats
	c.Subtitles.Style = strings.ToLower(strings.TrimSpace(c.Subtitles.Style))
	if c.Subtitles.Style == "" {
		c.Subtitles.Style = "default"
	}
}

func (c *Config) normalizeProviders() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "auto" {
		c.Transcription.Language = ""
	}
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	c.TTS.Backend = strings.ToLower(strings.TrimSpace(c.TTS.Backend))
	c.Web.TaskStore = strings.ToLower(strings.TrimSpace(c.Web.TaskStore))
	if c.Web.TaskStore == "" {
		c.Web.TaskStore = "sqlite"
	}
	for i, l := range c.Dubbing.Languages {
		c.Dubbing.Languages[i] = strings.ToLower(strings.TrimSpace(l))
	}
}

func (c *Config) normalizeKeys() {
	c.Keys.Gemini = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	c.Keys.OpenAI = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.Keys.Anthropic = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
