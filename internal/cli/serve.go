package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tasks"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/web"
)

const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve the browser interface for uploading media, generating subtitles
and dubbing videos.

Uploads are queued and processed by a fixed number of workers. Task state
is kept in a SQLite database (paths.task_db) unless web.task_store is
"memory". The output directory is locked so only one server uses it.

Examples:
  altyazi serve
  altyazi serve --bind 0.0.0.0:8080 --workers 2`,
	Args:        cobra.NoArgs,
	Annotations: needsFFmpeg,
	RunE:        runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("bind", "", "Listen address (default from config)")
	serveCmd.Flags().
		Int("workers", 0, "Tasks processed at once (default from config)")
}

func openTaskStore(ctx context.Context) (tasks.Store, error) {
	if cfg.Web.TaskStore == "memory" {
		return tasks.NewMemoryStore(), nil
	}
	store, err := tasks.OpenSQLite(ctx, cfg.Paths.TaskDB)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	logger.Infow("task store opened", "path", store.Path())
	return store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bind := cfg.Web.Bind
	if cmd.Flags().Changed("bind") {
		bind, _ = cmd.Flags().GetString("bind")
	}
	workers := cfg.Web.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	if workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := openTaskStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	queue, err := tasks.NewQueue(store, workers, cfg.Web.Backlog, logger)
	if err != nil {
		return err
	}
	queue.Start(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := queue.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("task queue shutdown", "error", err)
		}
	}()

	srv, err := web.NewServer(queue, serveRunners(tools), web.Options{
		UploadDir:      cfg.Paths.UploadDir,
		OutputDir:      cfg.Paths.OutputDir,
		MaxUploadBytes: int64(cfg.Web.MaxUploadMB) << 20,
		Styles:         tools.styles,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("altyazi web interface: http://%s\n", bind)
	return srv.Serve(ctx, bind)
}
