package log

import (
	"io"
	"sync/atomic"
)

var root atomic.Pointer[Logger]

func init() {
	l := NewLogger(NewTerminalHandler(io.Discard, false))
	root.Store(&l)
}

// SetDefault installs l as the package-level logger used by Trace,
// Debug, Info, Warn, Error and Crit.
func SetDefault(l Logger) {
	root.Store(&l)
}

// Root returns the current package-level logger.
func Root() Logger {
	return *root.Load()
}

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }

// New returns a new Logger with ctx always attached, rooted at the
// current default logger's handler.
func New(ctx ...any) Logger {
	return Root().New(ctx...)
}
