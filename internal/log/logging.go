package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits one step below slog.LevelDebug, for per-report chatter
// that is too noisy even for the debug level.
const LevelTrace = slog.Level(-8)

// ParseLevel maps a CLI/config level string to a slog.Level, accepting the
// standard names plus "trace".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}

// levelFilterHandler drops records below a minimum level before delegating,
// letting several handlers share one threshold independent of their own
// configured level.
type levelFilterHandler struct {
	next slog.Handler
	min  slog.Level
}

func newLevelFilter(next slog.Handler, min slog.Level) slog.Handler {
	return &levelFilterHandler{next: next, min: min}
}

func (h *levelFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.next.Enabled(ctx, level)
}

func (h *levelFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilterHandler{next: h.next.WithAttrs(attrs), min: h.min}
}

func (h *levelFilterHandler) WithGroup(name string) slog.Handler {
	return &levelFilterHandler{next: h.next.WithGroup(name), min: h.min}
}

// multiHandler fans one record out to every wrapped handler, so console and
// file output can run at independent levels from a single logger.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}

// SetupLogger builds the process-wide structured logger: a human-readable
// console handler at levelStr, plus an optional JSON file handler at the
// same level when filePath is non-empty. Callers must Close every returned
// io.Closer on shutdown.
func SetupLogger(levelStr, filePath string) (*slog.Logger, []io.Closer, error) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}

	var closers []io.Closer
	handlers := []slog.Handler{
		newLevelFilter(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}), level),
	}

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f)
		handlers = append(handlers, newLevelFilter(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}), level))
	}

	logger := slog.New(newMultiHandler(handlers...))
	return logger, closers, nil
}
