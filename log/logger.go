// Package log provides leveled, structured logging for the sync core,
// modeled on the handler/logger split used across the corpus: callers
// get a small Logger interface, output formatting is a swappable
// slog.Handler.
package log

import (
	"context"
	"log/slog"
)

// Logger is the interface every component in this module logs through.
// Key-value pairs are passed as an alternating list, the same calling
// convention as slog.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// New returns a Logger that always includes the given context.
	New(ctx ...any) Logger

	// Handler exposes the underlying slog.Handler, e.g. for Vmodule/Verbosity.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger wraps a slog.Handler as a Logger.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) write(level Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), slog.Level(level), msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.write(LevelCrit, msg, ctx...) }

func (l *logger) New(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}
