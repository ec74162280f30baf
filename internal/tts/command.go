package tts

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

// Decoder reads an encoded audio file. *audio.Processor satisfies it.
type Decoder interface {
	Decode(ctx context.Context, path string, rate beep.SampleRate) (*audio.Track, error)
}

// argument placeholders expanded per request
const (
	argVoice  = "{voice}"
	argText   = "{text}"
	argOutput = "{output}"
	argRate   = "{rate}"
)

const defaultCommand = "edge-tts"

var defaultCommandArgs = []string{
	"--voice", argVoice,
	"--rate", argRate,
	"--text", argText,
	"--write-media", argOutput,
}

// CommandSynthesizer runs an external TTS program (edge-tts by default)
// that writes one audio file per request.
type CommandSynthesizer struct {
	command string
	args    []string
	decoder Decoder
}

func NewCommandSynthesizer(command string, args []string, decoder Decoder) (*CommandSynthesizer, error) {
	if decoder == nil {
		return nil, fmt.Errorf("audio decoder is required")
	}
	if command == "" {
		command = defaultCommand
	}
	if len(args) == 0 {
		args = defaultCommandArgs
	}
	if !containsArg(args, argOutput) {
		return nil, fmt.Errorf("command arguments must include %s", argOutput)
	}
	return &CommandSynthesizer{command: command, args: args, decoder: decoder}, nil
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	dir, err := os.MkdirTemp("", "altyazi-tts-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()
	out := filepath.Join(dir, "clip.mp3")

	args := expandArgs(s.args, strings.NewReplacer(
		argVoice, voice.Name,
		argText, text,
		argOutput, out,
		argRate, rateArg(voice.Speed),
	))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", filepath.Base(s.command), err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", filepath.Base(s.command), err)
	}

	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("%s produced no audio", filepath.Base(s.command))
	}
	return s.decoder.Decode(ctx, out, audio.DefaultRate)
}

// edge-tts expects a signed percentage
func rateArg(speed float64) string {
	if speed <= 0 {
		speed = 1
	}
	return fmt.Sprintf("%+d%%", int(math.Round((speed-1)*100)))
}

// expandArgs substitutes placeholders in a single pass, so values that
// contain placeholder text are passed through literally.
func expandArgs(args []string, r *strings.Replacer) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

func containsArg(args []string, placeholder string) bool {
	for _, a := range args {
		if strings.Contains(a, placeholder) {
			return true
		}
	}
	return false
}
