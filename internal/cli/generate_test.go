package cli

import (
	"slices"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/config"
)

// generateCommand returns a fresh generate command with the root's
// persistent flags, parsed from args, and installs the default config.
func generateCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	defaults := config.Default()
	prev := cfg
	cfg = &defaults
	t.Cleanup(func() { cfg = prev })

	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "")
	cmd.Flags().StringP("language", "l", "", "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestGenerateFlagsUseConfigDefaults(t *testing.T) {
	s, err := generateFlags(generateCommand(t))
	if err != nil {
		t.Fatalf("generateFlags: %v", err)
	}
	if !slices.Equal(s.formats, []string{"video", "srt"}) {
		t.Errorf("formats = %v", s.formats)
	}
	if s.transcribe.Provider != "whisper" || s.transcribe.Model != "base" {
		t.Errorf("transcription = %+v", s.transcribe)
	}
	if s.styleName != "default" || !s.enhance || s.outDir != "./output" {
		t.Errorf("settings = %+v", s)
	}
	if s.transcribe.Language != "" {
		t.Errorf("language = %q, want auto detection", s.transcribe.Language)
	}
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	cmd := generateCommand(t,
		"--formats", "SRT,ass,txt",
		"--style", "cinema",
		"-l", "TR",
		"--include-timestamps",
		"--no-audio-enhance",
		"-o", "/tmp/subs",
		"--chunk-seconds", "60",
		"--concurrency", "5",
	)
	s, err := generateFlags(cmd)
	if err != nil {
		t.Fatalf("generateFlags: %v", err)
	}
	if !slices.Equal(s.formats, []string{"srt", "ass", "txt"}) {
		t.Errorf("formats = %v", s.formats)
	}
	if s.styleName != "cinema" || s.transcribe.Language != "tr" {
		t.Errorf("style = %q, language = %q", s.styleName, s.transcribe.Language)
	}
	if !s.timestamps || s.enhance {
		t.Errorf("timestamps = %v, enhance = %v", s.timestamps, s.enhance)
	}
	if s.outDir != "/tmp/subs" || s.chunk != 60 || s.concurrency != 5 {
		t.Errorf("settings = %+v", s)
	}
}

func TestGenerateFlagsProviderSwitchDropsConfiguredModel(t *testing.T) {
	s, err := generateFlags(generateCommand(t, "--provider", "Gemini"))
	if err != nil {
		t.Fatalf("generateFlags: %v", err)
	}
	if s.transcribe.Provider != "gemini" || s.transcribe.Model != "" {
		t.Fatalf("transcription = %+v, want gemini with provider default model", s.transcribe)
	}

	s, err = generateFlags(generateCommand(t, "--provider", "openai", "--model", "whisper-1"))
	if err != nil {
		t.Fatalf("generateFlags: %v", err)
	}
	if s.transcribe.Model != "whisper-1" {
		t.Fatalf("model = %q", s.transcribe.Model)
	}
}

func TestGenerateFlagsRejects(t *testing.T) {
	tests := map[string][]string{
		"format":      {"--formats", "docx"},
		"language":    {"-l", "zz"},
		"workers":     {"--workers", "0"},
		"chunk":       {"--chunk-seconds=-5"},
		"concurrency": {"--concurrency", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := generateFlags(generateCommand(t, args...)); err == nil {
				t.Fatalf("generateFlags(%v) succeeded", args)
			}
		})
	}
}
