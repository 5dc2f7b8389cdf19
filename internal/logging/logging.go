// Package logging builds the application logger: a log/slog front backed by
// a charmbracelet/log handler for readable CLI output.
package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	writer io.Writer
}

// Option configures a logger created with New.
type Option func(*config)

// WithVerbose sets the log level to Debug when true, Info otherwise.
func WithVerbose(verbose bool) Option {
	return func(c *config) {
		if verbose {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr so log lines
// never interleave with progress bars on stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// New creates the application logger.
func New(opts ...Option) *slog.Logger {
	cfg := config{
		level:  slog.LevelInfo,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	handler := charmlog.NewWithOptions(cfg.writer, charmlog.Options{
		Level:           charmlog.Level(cfg.level),
		ReportTimestamp: true,
	})
	return slog.New(handler)
}
