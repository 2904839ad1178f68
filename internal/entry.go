// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kbsite/internal/apperr"
	"github.com/starford/kbsite/internal/engine"
	"github.com/starford/kbsite/internal/manifest"
	"github.com/starford/kbsite/internal/models"
	"github.com/starford/kbsite/internal/publish"
	"github.com/starford/kbsite/internal/report"
	"github.com/starford/kbsite/internal/site"
	"github.com/starford/kbsite/internal/source"
	"github.com/starford/kbsite/internal/storage"
	"github.com/starford/kbsite/internal/watch"
)

// Render output formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

func setup(opts []Option) (*application, *slog.Logger, error) {
	app := &application{stdout: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Logs go to stderr so stdout carries only the summary.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("notes_path", app.config.Source.NotesPath),
		slog.String("output_dir", app.config.Output.Dir),
		slog.String("manifest_driver", app.config.Manifest.Driver),
		slog.String("manifest_path", app.config.Manifest.Path),
		slog.String("log_level", app.config.App.LogLevel.String()))

	return app, logger, nil
}

// Run performs one sync pass and prints its summary.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	return app.sync(ctx, logger)
}

func (a *application) sync(ctx context.Context, logger *slog.Logger) error {
	cfg := a.config
	src := source.NewFile(cfg.Source.NotesPath)
	notes, err := src.Notes(ctx)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	manifests, err := manifest.Open(cfg.Manifest.Driver, cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("init manifest: %w", err)
	}
	defer manifests.Close()

	eng := engine.New(store, manifests, site.NewComposer(cfg.Output.SiteTitle, cfg.Output.Description), logger, engine.Options{
		Keywords:    cfg.Site.Keywords,
		RecentLimit: cfg.Site.RecentLimit,
		Force:       a.force,
	})
	res, err := eng.Run(ctx, notes)
	if err != nil {
		return err
	}

	if err := report.Write(a.stdout, res); err != nil {
		return err
	}

	if cfg.Source.RemoveAfterSync {
		if err := src.Remove(); err != nil {
			return fmt.Errorf("remove notes export: %w", err)
		}
		logger.Info("Notes export removed", slog.String("path", cfg.Source.NotesPath))
	}
	return nil
}

// RunWatch runs a pass now and again whenever the notes export changes,
// until ctx is cancelled or a shutdown signal arrives.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pass := func(ctx context.Context) error {
		err := app.sync(ctx, logger)
		if errors.Is(err, apperr.ErrNotFound) {
			logger.Info("Waiting for notes export", slog.String("path", app.config.Source.NotesPath))
			return nil
		}
		return err
	}

	if err := pass(ctx); err != nil {
		logger.Error("Initial sync failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, app.config.Source.NotesPath, app.config.Watch.Debounce, logger, pass)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Watch error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped successfully")
	return nil
}

// Publish uploads the output directory to the configured bucket.
func Publish(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config.Publish
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := storage.NewFS(app.config.Output.Dir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	objects, err := publish.NewS3(ctx, publish.S3Config{
		Region:       cfg.Region,
		Profile:      cfg.Profile,
		Endpoint:     cfg.Endpoint,
		UsePathStyle: cfg.PathStyle,
	})
	if err != nil {
		return fmt.Errorf("init s3: %w", err)
	}

	stats, err := publish.New(objects, cfg.Bucket, cfg.Prefix, logger).Run(ctx, store)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(app.stdout, "uploaded %d, unchanged %d\n", stats.Uploaded, stats.Unchanged)
	return err
}

// Render prints the body of a single note as HTML or Markdown.
func Render(ctx context.Context, id, format string, opts ...Option) error {
	app, _, err := setup(opts)
	if err != nil {
		return err
	}

	n, err := findNote(ctx, source.NewFile(app.config.Source.NotesPath), id)
	if err != nil {
		return err
	}

	body, _ := engine.RenderNote(n)
	switch format {
	case FormatHTML, "":
	case FormatMarkdown:
		body, err = htmltomarkdown.ConvertString(body)
		if err != nil {
			return fmt.Errorf("convert %s to markdown: %w", id, err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	_, err = fmt.Fprintln(app.stdout, body)
	return err
}

func findNote(ctx context.Context, src source.Source, id string) (models.Note, error) {
	notes, err := src.Notes(ctx)
	if err != nil {
		return models.Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Note{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
}
