package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a unix shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunnerSuccess(t *testing.T) {
	bin := writeScript(t, "ffmpeg", `for last; do :; done
echo ok > "$last"
`)
	out := filepath.Join(t.TempDir(), "out.wav")
	r := NewRunner(BinaryPaths{FFmpeg: bin}, Timeouts{}, nil)

	if err := r.Run(context.Background(), Extract, out, "-i", "in.mp4", out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRunnerFailureRemovesOutput(t *testing.T) {
	bin := writeScript(t, "ffmpeg", `for last; do :; done
echo partial > "$last"
echo "Invalid data found when processing input" >&2
exit 1
`)
	out := filepath.Join(t.TempDir(), "out.mp4")
	r := NewRunner(BinaryPaths{FFmpeg: bin}, Timeouts{}, nil)

	err := r.Run(context.Background(), Mux, out, "-i", "in.mp4", out)
	if !errors.Is(err, apperr.ExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("stderr not captured: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("partial output not removed")
	}
}

func TestRunnerTimeout(t *testing.T) {
	bin := writeScript(t, "ffmpeg", "exec sleep 5\n")
	r := NewRunner(BinaryPaths{FFmpeg: bin}, Timeouts{Probe: 100 * time.Millisecond}, nil)

	start := time.Now()
	_, err := r.invoke(context.Background(), Probe, bin, "", []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Errorf("timeout not enforced")
	}
}

func TestRunnerMissingBinary(t *testing.T) {
	r := NewRunner(BinaryPaths{}, Timeouts{}, nil)
	if err := r.Run(context.Background(), Extract, "", "-version"); !errors.Is(err, apperr.ExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	bin := writeScript(t, "ffprobe", `cat <<'JSON'
{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":1920,"height":1080,"avg_frame_rate":"30000/1001"},
{"index":1,"codec_name":"aac","codec_type":"audio","sample_rate":"48000","channels":2}],
"format":{"filename":"in.mp4","duration":"12.500000"}}
JSON
`)
	r := NewRunner(BinaryPaths{FFprobe: bin}, Timeouts{}, nil)

	res, err := r.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	d, err := res.Duration()
	if err != nil || d != 12500*time.Millisecond {
		t.Errorf("Duration = %v, %v", d, err)
	}
	if !res.HasAudio() || !res.HasVideo() {
		t.Errorf("expected audio and video streams")
	}
	v := res.VideoStream()
	if v.Width != 1920 || v.FrameRate() < 29.9 || v.FrameRate() > 30 {
		t.Errorf("unexpected video stream: %+v", v)
	}
}

func TestTimeoutsFor(t *testing.T) {
	tm := Timeouts{Extract: time.Minute}
	if tm.For(Extract) != time.Minute {
		t.Errorf("explicit timeout ignored")
	}
	if tm.For(Probe) != 30*time.Second || tm.For(Mux) != 30*time.Minute {
		t.Errorf("defaults not applied: %v %v", tm.For(Probe), tm.For(Mux))
	}
}

func TestLocate(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("ALTYAZI_FFMPEG_PATH", "")
	t.Setenv("ALTYAZI_FFPROBE_PATH", "")

	if _, err := Locate(Options{}); !errors.Is(err, apperr.ExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	t.Setenv("ALTYAZI_FFPROBE_PATH", "/opt/ffprobe")
	paths, err := Locate(Options{FFmpegPath: "/opt/ffmpeg"})
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if paths.FFmpeg != "/opt/ffmpeg" || paths.FFprobe != "/opt/ffprobe" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestAssetForPlatform(t *testing.T) {
	name, err := assetForPlatform("linux", "amd64")
	if err != nil || !strings.HasSuffix(name, "linux-64.zip") {
		t.Errorf("linux/amd64 asset = %q, %v", name, err)
	}
	if _, err := assetForPlatform("plan9", "386"); err == nil {
		t.Error("expected unsupported platform error")
	}
}
