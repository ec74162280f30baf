package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

type BatchReport struct {
	Results []*FileResult
	OutDir  string
	Elapsed time.Duration
}

func (r *BatchReport) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Batch processes srcs with at most workers files in flight. A failing file
// is recorded and the others continue. Results keep the input order.
func (p *Processor) Batch(ctx context.Context, srcs []string, outDir string, opts Options, workers int) *BatchReport {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	report := &BatchReport{Results: make([]*FileResult, len(srcs)), OutDir: outDir}

	for _, src := range srcs {
		p.observer.Observe(Event{File: src, Stage: StageQueued})
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Results[i] = &FileResult{Source: src, Status: StatusFailed, Err: err}
				return nil
			}
			res, _ := p.ProcessFile(ctx, src, outDir, opts)
			report.Results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	report.Elapsed = time.Since(start)
	p.logger.Infow("batch complete",
		"files", len(srcs),
		"succeeded", report.Count(StatusSuccess),
		"partial", report.Count(StatusPartial),
		"failed", report.Count(StatusFailed),
	)
	return report
}

// CollectInputs resolves the input argument. In batch mode path must be a
// directory and every media file below it is returned, sorted. Otherwise a
// directory yields its first media file by name and a file must itself be a
// supported media file.
func CollectInputs(path string, batch bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.New(apperr.Input, path, fmt.Errorf("input path not found"))
	}

	if batch {
		if !info.IsDir() {
			return nil, apperr.Newf(apperr.Input, path, "batch mode requires a directory input")
		}
		var files []string
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && audio.IsMediaFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, apperr.Newf(apperr.Input, path, "no supported media files found")
		}
		sort.Strings(files)
		return files, nil
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.IsDir() && audio.IsMediaFile(e.Name()) {
				return []string{filepath.Join(path, e.Name())}, nil
			}
		}
		return nil, apperr.Newf(apperr.Input, path, "no media files in directory, use batch mode for folders")
	}

	if !audio.IsMediaFile(path) {
		return nil, apperr.Newf(apperr.Input, path, "unsupported file type: %s", strings.ToLower(filepath.Ext(path)))
	}
	return []string{path}, nil
}
