// Package logging builds the slog logger used for diagnostics and carries
// it through context.Context.
//
// User-facing progress lines are printed directly by the CLI; this logger
// is for what happens underneath (generator commands, exit statuses,
// durations). It writes to stderr and, when configured, to a size-rotated
// file in the output directory.
package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// key is an unexported type to prevent collisions with context keys from
// other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx. When none was embedded it
// returns a logger that discards everything, so library code never needs
// a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return Discard()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Options configures New.
type Options struct {
	// Verbose lowers the stderr level from Warn to Debug.
	Verbose bool

	// File is the log file path; empty disables the file sink. Relative
	// paths are resolved against Dir.
	File string

	// Dir is the directory relative file paths are resolved against.
	Dir string

	// MaxSizeMB and MaxBackups control rotation of the file sink.
	MaxSizeMB  int
	MaxBackups int
}

// New builds a logger writing text records to stderr and, when opts.File
// is set, JSON records at Debug level to a rotating file.
//
// The returned closer releases the log file and must be called when the
// run ends. It is never nil.
func New(stderr io.Writer, opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	if opts.File == "" {
		return slog.New(console), nopCloser{}
	}

	path := opts.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})

	// Each handler keeps its own level.
	return slog.New(slogmulti.Fanout(console, fileHandler)), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
