package ffmpeg

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInstallFromZip(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"bin/ffmpeg":  "encoder",
		"bin/ffprobe": "prober",
		"README.txt":  "ignored",
	})
	dir := t.TempDir()
	if err := installFromZip(archive, dir); err != nil {
		t.Fatalf("installFromZip: %v", err)
	}

	paths := BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(dir, "ffprobe"+executableSuffix()),
	}
	if !paths.installed() {
		t.Fatalf("binaries missing after install: %+v", paths)
	}
	data, err := os.ReadFile(paths.FFprobe)
	if err != nil || string(data) != "prober" {
		t.Errorf("ffprobe = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "README.txt")); !os.IsNotExist(err) {
		t.Error("unrelated entry was extracted")
	}
}

func TestInstallFromZipMissingBinary(t *testing.T) {
	archive := writeZip(t, map[string]string{"ffmpeg.exe": "encoder"})
	if err := installFromZip(archive, t.TempDir()); err == nil {
		t.Fatal("expected error for archive without ffprobe")
	}
}
