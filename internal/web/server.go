// Package web serves the browser front end: uploads become queued tasks,
// finished outputs are listed and downloadable.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tasks"
)

//go:embed static/index.html
var static embed.FS

const (
	lockFileName         = ".altyazi.lock"
	defaultMaxUploadSize = 500 << 20
)

// Request is a validated upload handed to the Worker.
type Request struct {
	Kind      tasks.Kind
	Input     string
	OutputDir string

	Formats           []string
	Style             style.Config
	StyleName         string
	Language          string
	Languages         []string
	Model             string
	IncludeTimestamps bool
	Enhance           bool
}

// Worker turns a request into the job run on the task queue.
type Worker interface {
	Work(req Request) tasks.Func
}

type WorkerFunc func(Request) tasks.Func

func (f WorkerFunc) Work(req Request) tasks.Func { return f(req) }

type Options struct {
	UploadDir      string
	OutputDir      string
	MaxUploadBytes int64
	Styles         *style.Table
	Logger         *logging.Logger
}

type Server struct {
	queue     *tasks.Queue
	worker    Worker
	uploadDir string
	outputDir string
	maxUpload int64
	styles    *style.Table
	logger    *logging.Logger
	lock      *flock.Flock
}

func NewServer(queue *tasks.Queue, worker Worker, opts Options) (*Server, error) {
	switch {
	case queue == nil:
		return nil, fmt.Errorf("task queue is required")
	case worker == nil:
		return nil, fmt.Errorf("worker is required")
	case opts.UploadDir == "" || opts.OutputDir == "":
		return nil, fmt.Errorf("upload and output directories are required")
	}
	for _, dir := range []string{opts.UploadDir, opts.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadSize
	}
	if opts.Styles == nil {
		opts.Styles = style.NewTable(style.SystemFonts{})
	}
	return &Server{
		queue:     queue,
		worker:    worker,
		uploadDir: opts.UploadDir,
		outputDir: opts.OutputDir,
		maxUpload: opts.MaxUploadBytes,
		styles:    opts.Styles,
		logger:    logging.OrNop(opts.Logger).With("component", "web"),
		lock:      flock.New(filepath.Join(opts.OutputDir, lockFileName)),
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/tasks", s.handleSubmit)
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleTask)
	mux.HandleFunc("GET /api/outputs", s.handleOutputs)
	mux.HandleFunc("GET /download/{path...}", s.handleDownload)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/styles", s.handleStyles)
	return mux
}

// Serve locks the output directory and serves until ctx ends.
func (s *Server) Serve(ctx context.Context, bind string) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output directory: %w", err)
	}
	if !ok {
		return fmt.Errorf("output directory %s is in use by another server", s.outputDir)
	}
	defer func() { _ = s.lock.Unlock() }()

	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Infow("web server listening", "address", listener.Addr().String(), "output_dir", s.outputDir)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
