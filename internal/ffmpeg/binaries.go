// Package ffmpeg locates the ffmpeg/ffprobe binaries and runs them with
// per-call timeouts.
package ffmpeg

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Options controls binary discovery. Explicit paths win over the
// ALTYAZI_FFMPEG_PATH / ALTYAZI_FFPROBE_PATH environment variables, which win
// over PATH. When AutoDownload is set and a binary is still missing, a static
// build is fetched into CacheDir.
type Options struct {
	FFmpegPath   string
	FFprobePath  string
	AutoDownload bool
	CacheDir     string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates the binaries once per process. Options passed after the
// first call are ignored.
func Ensure(opts Options) (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = Locate(opts)
	})
	return ensurePath, ensureErr
}

// Locate resolves both binaries without memoizing.
func Locate(opts Options) (BinaryPaths, error) {
	ffmpegPath := firstNonEmpty(opts.FFmpegPath, os.Getenv("ALTYAZI_FFMPEG_PATH"))
	ffprobePath := firstNonEmpty(opts.FFprobePath, os.Getenv("ALTYAZI_FFPROBE_PATH"))

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath != "" && ffprobePath != "" {
		return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
	}

	if !opts.AutoDownload {
		missing := "ffmpeg"
		if ffmpegPath != "" {
			missing = "ffprobe"
		}
		return BinaryPaths{}, apperr.Newf(apperr.ExternalTool, missing,
			"not found on PATH; install it or set ALTYAZI_FFMPEG_PATH and ALTYAZI_FFPROBE_PATH")
	}
	return download(opts.CacheDir)
}

var releaseAssets = map[string]string{
	"linux/amd64":   "linux-64",
	"linux/arm64":   "linux-arm-64",
	"darwin/amd64":  "macos-64",
	"windows/amd64": "win-64",
}

func assetForPlatform(goos, goarch string) (string, error) {
	suffix, ok := releaseAssets[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("unsupported platform for bundled ffmpeg: %s/%s", goos, goarch)
	}
	return "ffmpeg-" + ffmpegReleaseVersion + "-" + suffix + ".zip", nil
}

// download installs a static build under cacheDir. A file lock on the
// install dir keeps concurrent processes from fetching the same bundle.
func download(cacheDir string) (BinaryPaths, error) {
	asset, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}
	if cacheDir == "" {
		if cacheDir, err = os.UserCacheDir(); err != nil || cacheDir == "" {
			cacheDir = os.TempDir()
		}
		cacheDir = filepath.Join(cacheDir, "altyazi")
	}
	dir := filepath.Join(cacheDir, "ffmpeg", ffmpegReleaseVersion, runtime.GOOS+"-"+runtime.GOARCH)
	paths := BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(dir, "ffprobe"+executableSuffix()),
	}
	if paths.installed() {
		return paths, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return BinaryPaths{}, fmt.Errorf("lock ffmpeg cache dir: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	if paths.installed() {
		return paths, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	archive, err := fetch(ctx, fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, asset))
	if err != nil {
		return BinaryPaths{}, err
	}
	defer func() { _ = os.Remove(archive) }()

	if err := installFromZip(archive, dir); err != nil {
		return BinaryPaths{}, fmt.Errorf("extract %s: %w", asset, err)
	}
	if !paths.installed() {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}
	return paths, nil
}

const downloadTimeout = 5 * time.Minute

// fetch saves url to a temp file and returns its path.
func fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "altyazi-ffmpeg-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	_, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write archive: %w", err)
	}
	return tmp.Name(), nil
}

// installFromZip copies the ffmpeg and ffprobe entries of a release zip into
// dir, wherever they sit inside the archive.
func installFromZip(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	want := map[string]bool{"ffmpeg": false, "ffprobe": false}
	for _, entry := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(entry.Name)), ".exe")
		if done, ok := want[name]; !ok || done || entry.FileInfo().IsDir() {
			continue
		}
		if err := installEntry(entry, filepath.Join(dir, name+executableSuffix())); err != nil {
			return err
		}
		want[name] = true
	}
	for name, found := range want {
		if !found {
			return fmt.Errorf("ffmpeg archive has no %s binary", name)
		}
	}
	return nil
}

// installEntry writes next to dest and renames, so a crash never leaves a
// truncated binary behind.
func installEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer func() { _ = src.Close() }()

	tmp := dest + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dest), err)
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	return os.Rename(tmp, dest)
}

func (p BinaryPaths) installed() bool {
	return nonEmptyFile(p.FFmpeg) && nonEmptyFile(p.FFprobe)
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
