package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
)

// Class groups invocations that share a timeout.
type Class int

const (
	Probe Class = iota
	Extract
	Mux
)

func (c Class) String() string {
	switch c {
	case Probe:
		return "probe"
	case Extract:
		return "extract"
	case Mux:
		return "mux"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Timeouts bounds each call class.
type Timeouts struct {
	Probe   time.Duration
	Extract time.Duration
	Mux     time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Probe:   30 * time.Second,
		Extract: 5 * time.Minute,
		Mux:     30 * time.Minute,
	}
}

func (t Timeouts) For(c Class) time.Duration {
	defaults := DefaultTimeouts()
	pick := func(v, d time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return d
	}
	switch c {
	case Probe:
		return pick(t.Probe, defaults.Probe)
	case Extract:
		return pick(t.Extract, defaults.Extract)
	default:
		return pick(t.Mux, defaults.Mux)
	}
}

// keep the end of stderr; ffmpeg prints the actual failure last
const stderrTail = 4096

// Runner executes ffmpeg and ffprobe synchronously under a per-class timeout.
// A failed run removes its output file before returning.
type Runner struct {
	paths    BinaryPaths
	timeouts Timeouts
	logger   *logging.Logger
}

func NewRunner(paths BinaryPaths, timeouts Timeouts, logger *logging.Logger) *Runner {
	return &Runner{paths: paths, timeouts: timeouts, logger: logging.OrNop(logger)}
}

func (r *Runner) Paths() BinaryPaths {
	return r.paths
}

// RunStream runs a command graph built with ffmpeg-go. output is the file the
// graph writes; it is deleted when the run fails.
func (r *Runner) RunStream(ctx context.Context, class Class, output string, stream *ffmpeg.Stream) error {
	return r.Run(ctx, class, output, stream.GetArgs()...)
}

// Run invokes ffmpeg with raw arguments.
func (r *Runner) Run(ctx context.Context, class Class, output string, args ...string) error {
	_, err := r.invoke(ctx, class, r.paths.FFmpeg, output, args)
	return err
}

// Capture runs ffmpeg writing to stdout (pipe:) and returns what it wrote.
func (r *Runner) Capture(ctx context.Context, class Class, stream *ffmpeg.Stream) ([]byte, error) {
	return r.invoke(ctx, class, r.paths.FFmpeg, "", stream.GetArgs())
}

// Output runs ffprobe and returns its stdout.
func (r *Runner) Output(ctx context.Context, args ...string) ([]byte, error) {
	return r.invoke(ctx, Probe, r.paths.FFprobe, "", args)
}

func (r *Runner) invoke(ctx context.Context, class Class, binary, output string, args []string) ([]byte, error) {
	if binary == "" {
		return nil, apperr.Newf(apperr.ExternalTool, class.String(), "binary path not configured")
	}

	timeout := r.timeouts.For(class)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	r.logger.Debugw("running external tool",
		"class", class.String(),
		"binary", binary,
		"args", strings.Join(args, " "),
	)

	err := cmd.Run()
	if err == nil {
		r.logger.Debugw("external tool finished",
			"class", class.String(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		return stdout.Bytes(), nil
	}

	if output != "" {
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			r.logger.Warnw("failed to remove partial output", "path", output, "error", rmErr)
		}
	}

	var cause error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		cause = fmt.Errorf("timed out after %s", timeout)
	case ctx.Err() != nil:
		cause = ctx.Err()
	default:
		cause = err
	}
	if tail := tailString(stderr.String(), stderrTail); tail != "" {
		cause = fmt.Errorf("%w: %s", cause, tail)
	}

	subject := output
	if subject == "" && len(args) > 0 {
		subject = args[len(args)-1]
	}
	return nil, apperr.New(apperr.ExternalTool, subject, fmt.Errorf("%s %s: %w", baseName(binary), class, cause))
}

func tailString(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
