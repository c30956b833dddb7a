// Package logging builds the CLI logger: a tint console handler wrapped so
// attributes stored on a context with AddAttrs appear on every record.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Options configures New.
type Options struct {
	Verbose bool
	// NoColor disables ANSI colors. Colors are off anyway when the writer
	// is not a terminal-backed *os.File.
	NoColor bool
	// TimeFormat defaults to "15:04:05.000".
	TimeFormat string
}

// New returns a logger writing to w. Verbose enables debug records.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05.000"
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		AddSource:  opts.Verbose,
		NoColor:    opts.NoColor || !isTerminal(w),
	})
	return slog.New(slogctx.NewHandler(handler, nil))
}

// WithLogger stores logger on ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return slogctx.NewCtx(ctx, logger)
}

// FromContext returns the logger stored on ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

// AddAttrs returns a context whose records carry attrs.
func AddAttrs(ctx context.Context, attrs ...any) context.Context {
	return slogctx.With(ctx, attrs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
