package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

// WhisperModels lists the local model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3"}

// WhisperTranscriber runs a locally installed whisper CLI and reads its JSON
// output.
type WhisperTranscriber struct {
	command string
	model   string
	device  string
	options Options
}

// json written by whisper --output_format json
type whisperFile struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
}

func NewWhisperTranscriber(opts Options) (*WhisperTranscriber, error) {
	command := opts.Command
	if command == "" {
		command = "whisper"
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("whisper command %q not found: %w", command, err)
	}

	model := opts.Model
	if model == "" {
		model = "base"
	}

	return &WhisperTranscriber{
		command: path,
		model:   model,
		device:  opts.Device,
		options: opts,
	}, nil
}

func (t *WhisperTranscriber) args(audioPath, outDir string) []string {
	args := []string{
		audioPath,
		"--model", t.model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if lang := t.options.Language; lang != "" && lang != "auto" {
		args = append(args, "--language", lang)
	}
	if tl := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage)); tl == "english" || tl == "en" {
		args = append(args, "--task", "translate")
	}
	if t.device != "" {
		args = append(args, "--device", t.device)
		if t.device == "cpu" {
			args = append(args, "--fp16", "False")
		}
	}
	if t.options.Prompt != "" {
		args = append(args, "--initial_prompt", t.options.Prompt)
	}
	return args
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, apperr.New(apperr.Input, audioPath, err)
	}

	outDir, err := os.MkdirTemp("", "altyazi-whisper-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.command, t.args(audioPath, outDir)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, apperr.Newf(apperr.ExternalTool, filepath.Base(audioPath), "whisper failed: %v: %s", err, msg)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, stem+".json"))
	if err != nil {
		return nil, fmt.Errorf("whisper produced no output: %w", err)
	}

	var parsed whisperFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := toSegments(parsed.Segments)
	duration := probe(ctx, t.options.Prober, audioPath)
	if duration == 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	lang := parsed.Language
	if lang == "" {
		lang = t.options.Language
	}

	return &Result{
		Segments: segments,
		Language: lang,
		Duration: duration,
	}, nil
}

// EstimateTime approximates local processing time for audio of the given
// length. Unknown models use a factor of 1.5.
func EstimateTime(duration float64, model string) float64 {
	factors := map[string]float64{
		"tiny":     0.3,
		"base":     0.5,
		"small":    0.8,
		"medium":   1.2,
		"large":    2.0,
		"large-v2": 2.2,
		"large-v3": 2.0,
	}
	factor, ok := factors[strings.ToLower(model)]
	if !ok {
		factor = 1.5
	}
	return duration * factor
}
