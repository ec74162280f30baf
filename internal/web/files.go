package web

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	errNotFound  = errors.New("file not found")
	errForbidden = errors.New("access denied")
)

type outputFile struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeLabel string    `json:"size_label"`
	Modified  time.Time `json:"modified"`
	URL       string    `json:"url"`
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	files, err := s.listOutputs()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]outputFile{"files": files})
}

// listOutputs returns every file below the output directory, newest first.
func (s *Server) listOutputs() ([]outputFile, error) {
	files := []outputFile{}
	err := filepath.WalkDir(s.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == lockFileName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.outputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, outputFile{
			Path:      rel,
			Size:      info.Size(),
			SizeLabel: sizeLabel(info.Size()),
			Modified:  info.ModTime().UTC(),
			URL:       "/download/" + escapePath(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].Path < files[j].Path
		}
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

func sizeLabel(n int64) string {
	if n > 1<<20 {
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
}

func escapePath(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, err := s.resolveOutput(r.PathValue("path"))
	switch {
	case errors.Is(err, errForbidden):
		s.writeError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusNotFound, errNotFound.Error())
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errNotFound.Error())
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(path)}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// resolveOutput maps a download path to a regular file inside the output
// directory, following symlinks before the containment check.
func (s *Server) resolveOutput(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", errNotFound
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errForbidden
	}

	root, err := filepath.EvalSymlinks(s.outputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Join(s.outputDir, clean))
	if err != nil {
		return "", errNotFound
	}
	inside, err := filepath.Rel(root, resolved)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", errForbidden
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() || info.Name() == lockFileName {
		return "", errNotFound
	}
	return resolved, nil
}

// clearFiles empties the upload and output directories, keeping the lock
// file, and returns how many files were removed.
func (s *Server) clearFiles() (int, error) {
	removed := 0
	for _, dir := range []string{s.uploadDir, s.outputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.Name() == lockFileName {
				continue
			}
			path := filepath.Join(dir, e.Name())
			removed += countFiles(path)
			if err := os.RemoveAll(path); err != nil {
				return removed, fmt.Errorf("remove %s: %w", path, err)
			}
		}
	}
	return removed, nil
}

func countFiles(path string) int {
	n := 0
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}
