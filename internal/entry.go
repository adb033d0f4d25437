// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/postdex/internal/api"
	"github.com/starford/postdex/internal/index"
	"github.com/starford/postdex/internal/mcpserver"
	"github.com/starford/postdex/internal/postservice"
	"github.com/starford/postdex/internal/scheduler"
	"github.com/starford/postdex/internal/sse"
	"github.com/starford/postdex/internal/storage"
)

type components struct {
	logger  *slog.Logger
	store   *storage.FS
	builder *index.Builder
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version:   "dev",
		logOutput: os.Stdout,
		output:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup builds the logger, storage and index builder shared by every command.
func (a *application) setup() (*components, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("posts_root", cfg.Posts.Root),
		slog.String("index_path", cfg.Posts.IndexPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Posts.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create posts dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Posts.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	builder := index.NewBuilder(store, cfg.Posts.Extension, cfg.Posts.IndexPath, index.WithLogger(logger))

	return &components{logger: logger, store: store, builder: builder}, nil
}

// Run starts the HTTP server with the given options and blocks until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.setup()
	if err != nil {
		return err
	}
	logger := c.logger

	broker := sse.NewBroker()
	defer broker.Close()

	svc := postservice.NewService(c.store, c.builder, cfg.Posts.Extension, broker, logger)

	if cfg.Refresh.OnStart {
		if _, err := svc.Refresh(ctx, false); err != nil {
			logger.Warn("initial refresh failed", slog.String("error", err.Error()))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.NewRouter(svc, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	refresh := func(ctx context.Context) {
		// Failures are logged by the service.
		_, _ = svc.Refresh(ctx, false)
	}

	if cfg.Refresh.Watch {
		g.Go(func() error {
			if err := index.Watch(gCtx, c.store.Root(), cfg.Posts.Extension, cfg.Refresh.Debounce, logger, refresh); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if cfg.Refresh.Schedule != "" {
		sched := scheduler.New(logger)
		if err := sched.Schedule(cfg.Refresh.Schedule, func() { refresh(gCtx) }); err != nil {
			return err
		}
		sched.Start()
		g.Go(func() error {
			<-gCtx.Done()
			sched.Stop()
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Unblocks the watcher and scheduler after a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// Refresh runs one rebuild and prints every rewritten document. In preview
// mode it prints what would be rewritten and changes nothing.
func Refresh(ctx context.Context, preview bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup()
	if err != nil {
		return err
	}

	res, err := c.builder.Build(ctx, preview)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	verb := "updated"
	if preview {
		verb = "would update"
	}
	for _, p := range res.Changed {
		fmt.Fprintf(app.output, "%s: %s\n", verb, p)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(app.output, "failed: %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintf(app.output, "%d documents indexed, %d changed (dry-run: %t)\n",
		len(res.Summaries), len(res.Changed), preview)

	if len(res.Failures) > 0 {
		return fmt.Errorf("refresh: %d documents could not be rewritten", len(res.Failures))
	}
	return nil
}

// List prints the path of every document in the tree.
func List(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup()
	if err != nil {
		return err
	}

	svc := postservice.NewService(c.store, c.builder, app.config.Posts.Extension, nil, c.logger)
	files, err := svc.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, f := range files {
		fmt.Fprintln(app.output, f.Name)
	}
	return nil
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
// Logs must not go to stdout in this mode.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := app.setup()
	if err != nil {
		return err
	}

	svc := postservice.NewService(c.store, c.builder, app.config.Posts.Extension, nil, c.logger)
	if app.config.Refresh.OnStart {
		if _, err := svc.Refresh(ctx, false); err != nil {
			c.logger.Warn("initial refresh failed", slog.String("error", err.Error()))
		}
	}

	c.logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}
