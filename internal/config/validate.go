package config

import (
	"errors"
	"fmt"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateDubbing(); err != nil {
		return err
	}
	if err := c.validateWeb(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.ProbeTimeout < 0 || c.FFmpeg.ExtractTimeout < 0 || c.FFmpeg.MuxTimeout < 0 {
		return errors.New("ffmpeg timeouts must be non-negative")
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return fmt.Errorf("ffmpeg.crf must be between 0 and 51, got %d", c.FFmpeg.CRF)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if len(c.Subtitles.Formats) == 0 {
		return errors.New("subtitles.formats must list at least one format")
	}
	for _, f := range c.Subtitles.Formats {
		if f == "video" {
			continue
		}
		if _, err := subtitle.ParseFormat(f); err != nil {
			return fmt.Errorf("subtitles.formats: %w", err)
		}
	}
	if _, err := style.ParseName(c.Subtitles.Style); err != nil {
		return fmt.Errorf("subtitles.style: %w", err)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case "whisper", "openai", "gemini":
	default:
		return fmt.Errorf("transcription.provider must be whisper, openai or gemini, got %q", c.Transcription.Provider)
	}
	if c.Transcription.Language != "" {
		if _, err := language.Parse(c.Transcription.Language); err != nil {
			return fmt.Errorf("transcription.language: %w", err)
		}
	}
	if c.Transcription.ChunkSeconds < 0 {
		return errors.New("transcription.chunk_seconds must be non-negative")
	}
	if c.Transcription.Concurrency <= 0 {
		return errors.New("transcription.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("translation.provider must be gemini, openai or anthropic, got %q", c.Translation.Provider)
	}
	if c.Translation.BatchSize <= 0 {
		return errors.New("translation.batch_size must be positive")
	}
	if c.Translation.Concurrency <= 0 {
		return errors.New("translation.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateTTS() error {
	switch c.TTS.Backend {
	case "edge", "openai", "gemini":
	default:
		return fmt.Errorf("tts.backend must be edge, openai or gemini, got %q", c.TTS.Backend)
	}
	if c.TTS.Speed <= 0 {
		return errors.New("tts.speed must be positive")
	}
	if c.TTS.RateLimit < 0 || c.TTS.Retries < 0 {
		return errors.New("tts.rate_limit and tts.retries must be non-negative")
	}
	return nil
}

func (c *Config) validateDubbing() error {
	for _, l := range c.Dubbing.Languages {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("dubbing.languages: %w", err)
		}
	}
	if c.Dubbing.Workers <= 0 {
		return errors.New("dubbing.workers must be positive")
	}
	if c.Dubbing.OriginalRatio < 0 || c.Dubbing.OriginalRatio > 1 {
		return errors.New("dubbing.original_ratio must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateWeb() error {
	if c.Web.Bind == "" {
		return errors.New("web.bind must be set")
	}
	if c.Web.MaxUploadMB <= 0 {
		return errors.New("web.max_upload_mb must be positive")
	}
	if c.Web.Workers <= 0 || c.Web.Backlog <= 0 {
		return errors.New("web.workers and web.backlog must be positive")
	}
	switch c.Web.TaskStore {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("web.task_store must be sqlite or memory, got %q", c.Web.TaskStore)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
