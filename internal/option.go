package internal

import (
	"io"
	"log/slog"
)

// Option is a functional option for configuring a run.
type Option func(*application)

type application struct {
	config *Config
	output io.Writer
	logger *slog.Logger
	watch  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets the console writer for reports. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}

// WithLogger overrides the logger built from the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithWatch keeps the indexer running and re-indexes on file changes.
func WithWatch(enabled bool) Option {
	return func(a *application) {
		a.watch = enabled
	}
}
