// Package internal wires configuration, logging and the two pipelines
// (documentation indexer and schema validation runner) into runnable entry points.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docops/internal/apperr"
	"github.com/starford/docops/internal/graphdb"
	"github.com/starford/docops/internal/indexer"
	"github.com/starford/docops/internal/schemacheck"
	"github.com/starford/docops/internal/storage"
	"github.com/starford/docops/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if app.output == nil {
		app.output = os.Stdout
	}
	if app.logger == nil {
		app.logger = newLogger(app.config.App, os.Stderr)
	}
	return app, nil
}

func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RunIndexer generates the master index and rewrites backlinks for every
// document under the configured root. With WithWatch it keeps running and
// repeats the full pass whenever documents change.
func RunIndexer(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("index_file", cfg.Docs.IndexFile),
		slog.String("export", cfg.Export.SQLitePath),
		slog.Bool("watch", app.watch))

	store, err := indexer.Prepare(cfg.Docs.Root, cfg.Docs.IndexFile, logger)
	if err != nil {
		return err
	}

	runOnce := func() error {
		res, err := indexer.Run(store, indexer.Options{
			IndexFile:        cfg.Docs.IndexFile,
			Extensions:       cfg.Docs.Extensions,
			IndexHeader:      cfg.Docs.IndexHeader,
			BacklinksHeading: cfg.Docs.BacklinksHeading,
			Logger:           logger,
		})
		if err != nil {
			return err
		}
		if cfg.Export.SQLitePath == "" {
			return nil
		}
		return exportGraph(cfg.Export.SQLitePath, res, logger)
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !app.watch {
		return nil
	}
	return watchAndRerun(ctx, store, cfg.Docs, logger, runOnce)
}

func exportGraph(dsn string, res *indexer.Result, logger *slog.Logger) error {
	db, err := graphdb.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Replace(res.Documents); err != nil {
		return err
	}
	logger.Info("exported link graph",
		slog.String("path", dsn),
		slog.Int("documents", len(res.Documents)),
		slog.Int("links", res.Graph.Len()))
	return nil
}

func watchAndRerun(ctx context.Context, store *storage.FS, docs DocsConfig, logger *slog.Logger, runOnce func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexFile := path.Clean(docs.IndexFile)
	match := func(rel string) bool {
		return rel != indexFile && storage.HasExt(rel, docs.Extensions)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return watch.Run(gCtx, store.Root(), watch.DefaultDebounce, match, logger, func() {
			if err := runOnce(); err != nil {
				logger.Error("re-index failed", slog.String("error", err.Error()))
			}
		})
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

	return g.Wait()
}

// RunValidator validates every data file against the designated schema and
// prints a per-file report. Any failing file makes the returned error wrap
// apperr.ErrValidation; a missing schema is returned as a not-found error.
func RunValidator(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config.Schema

	app.logger.Debug("Configuration loaded",
		slog.String("schema_dir", cfg.SchemaDir),
		slog.String("data_dir", cfg.DataDir),
		slog.String("schema_file", cfg.SchemaFile))

	summary, err := schemacheck.Run(schemacheck.Options{
		SchemaDir:  cfg.SchemaDir,
		DataDir:    cfg.DataDir,
		SchemaFile: cfg.SchemaFile,
		Extensions: cfg.Extensions,
		Logger:     app.logger,
	}, app.output)
	if err != nil {
		return err
	}
	if !summary.Passed {
		return fmt.Errorf("one or more data files failed validation: %w", apperr.ErrValidation)
	}
	return nil
}
