// Package logger constructs the process logger. Nothing here is global:
// the returned *slog.Logger is injected into whatever needs to log.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/consts"
)

// Options configures log output. Console and audit output are independent:
// either, both, or neither may be enabled.
type Options struct {
	// Console enables human-readable output.
	Console bool

	// Output receives console output. Defaults to os.Stderr.
	Output io.Writer

	// Level is the minimum level: debug, info, warn, or error. Defaults to
	// info; unknown values are an error.
	Level string

	// AuditPath, when set, appends every record to the named file as JSON
	// lines, regardless of console settings or level.
	AuditPath string
}

// New builds a logger from opts. The audit file, when configured, is opened
// append-only and kept open for the life of the process.
func New(opts Options) (*slog.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var handlers []slog.Handler

	if opts.Console {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	}

	if opts.AuditPath != "" {
		f, err := os.OpenFile(opts.AuditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.ModeFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open audit log: %s", opts.AuditPath)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(fanout{handlers}), nil
	}
}

func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Errorf("unknown log level %q (supported: debug, info, warn, error)", name)
	}
}

// fanout dispatches each record to every handler that accepts its level.
type fanout struct {
	handlers []slog.Handler
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return fanout{handlers}
}

func (f fanout) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return fanout{handlers}
}
