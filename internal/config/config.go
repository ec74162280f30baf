package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	UploadDir string `toml:"upload_dir"`
	TempDir   string `toml:"temp_dir"`
	TaskDB    string `toml:"task_db"`
	StyleFile string `toml:"style_file"`
}

// FFmpeg controls binary discovery, timeouts (seconds) and x264 settings.
type FFmpeg struct {
	FFmpegPath     string `toml:"ffmpeg_path"`
	FFprobePath    string `toml:"ffprobe_path"`
	AutoDownload   bool   `toml:"auto_download"`
	CacheDir       string `toml:"cache_dir"`
	ProbeTimeout   int    `toml:"probe_timeout"`
	ExtractTimeout int    `toml:"extract_timeout"`
	MuxTimeout     int    `toml:"mux_timeout"`
	Preset         string `toml:"preset"`
	CRF            int    `toml:"crf"`
}

// Subtitles contains the defaults for the generate command and web form.
type Subtitles struct {
	Formats             []string `toml:"formats"`
	Style               string   `toml:"style"`
	IncludeTimestamps   bool     `toml:"include_timestamps"`
	LegacyASSTimestamps bool     `toml:"legacy_ass_timestamps"`
	EnhanceAudio        bool     `toml:"enhance_audio"`
}

// Transcription selects the speech recognition backend.
type Transcription struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	Device         string `toml:"device"`
	WhisperCommand string `toml:"whisper_command"`
	// seconds per chunk for API backends, 0 sends the whole file
	ChunkSeconds int `toml:"chunk_seconds"`
	Concurrency  int `toml:"concurrency"`
}

// Translation selects the LLM used for subtitle translation.
type Translation struct {
	Provider    string `toml:"provider"`
	Model       string `toml:"model"`
	BatchSize   int    `toml:"batch_size"`
	Concurrency int    `toml:"concurrency"`
}

// TTS selects the speech synthesis backend.
type TTS struct {
	Backend     string   `toml:"backend"`
	Model       string   `toml:"model"`
	Voice       string   `toml:"voice"`
	Speed       float64  `toml:"speed"`
	Command     string   `toml:"command"`
	CommandArgs []string `toml:"command_args"`
	// requests per minute, 0 disables limiting
	RateLimit int `toml:"rate_limit"`
	Retries   int `toml:"retries"`
}

// Dubbing contains the multilingual dubbing settings.
type Dubbing struct {
	Languages     []string `toml:"languages"`
	Workers       int      `toml:"workers"`
	Bitrate       string   `toml:"bitrate"`
	OriginalRatio float64  `toml:"original_ratio"`
	BurnSubtitles bool     `toml:"burn_subtitles"`
	Translate     bool     `toml:"translate"`
}

// Web contains the HTTP front end settings.
type Web struct {
	Bind        string `toml:"bind"`
	MaxUploadMB int    `toml:"max_upload_mb"`
	Workers     int    `toml:"workers"`
	Backlog     int    `toml:"backlog"`
	// "sqlite" or "memory"
	TaskStore string `toml:"task_store"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Keys holds provider credentials. They are read from the environment
// only, never from the config file.
type Keys struct {
	Gemini    string `toml:"-"`
	OpenAI    string `toml:"-"`
	Anthropic string `toml:"-"`
}

// Config encapsulates all configuration values for altyazi.
type Config struct {
	Paths         Paths         `toml:"paths"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	TTS           TTS           `toml:"tts"`
	Dubbing       Dubbing       `toml:"dubbing"`
	Web           Web           `toml:"web"`
	Logging       Logging       `toml:"logging"`
	Keys          Keys          `toml:"-"`
}

const defaultConfigPath = "~/.config/altyazi/config.toml"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// LoadEnv reads optional .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the sample config to path unless a file already exists.
func WriteSample(path string) (string, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config %s already exists", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return expanded, nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// APIKey returns the credential for a provider name (gemini, openai,
// anthropic) or "" when unknown or unset.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.Keys.Gemini
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	}
	return ""
}

// EnsureDirectories creates the output, upload and task database directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.UploadDir}
	if c.Web.TaskStore == "sqlite" && c.Paths.TaskDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.TaskDB))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("altyazi.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
