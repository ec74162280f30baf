package config

const (
	defaultOutputDir = "./output"
	defaultUploadDir = "./uploads"
	defaultTaskDB    = "~/.local/share/altyazi/tasks.db"
	defaultBind      = "127.0.0.1:5000"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			UploadDir: defaultUploadDir,
			TaskDB:    defaultTaskDB,
		},
		FFmpeg: FFmpeg{
			ProbeTimeout:   30,
			ExtractTimeout: 300,
			MuxTimeout:     1800,
			Preset:         "medium",
			CRF:            23,
		},
		Subtitles: Subtitles{
			Formats:      []string{"video", "srt"},
			Style:        "default",
			EnhanceAudio: true,
		},
		Transcription: Transcription{
			Provider:       "whisper",
			Model:          "base",
			WhisperCommand: "whisper",
			Concurrency:    3,
		},
		Translation: Translation{
			Provider:    "gemini",
			BatchSize:   50,
			Concurrency: 3,
		},
		TTS: TTS{
			Backend: "edge",
			Speed:   1.0,
			Retries: 2,
		},
		Dubbing: Dubbing{
			Workers:       2,
			Bitrate:       "192k",
			OriginalRatio: 0.3,
			BurnSubtitles: true,
		},
		Web: Web{
			Bind:        defaultBind,
			MaxUploadMB: 500,
			Workers:     1,
			Backlog:     16,
			TaskStore:   "sqlite",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
