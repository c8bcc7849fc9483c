package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalHandlerWritesKeyValues(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewLogger(NewTerminalHandler(out, false))
	logger.Info("a message", "foo", "bar")

	have := out.String()
	require.Contains(t, have, "INFO")
	require.Contains(t, have, "a message")
	require.Contains(t, have, "foo=bar")
}

func TestGlogHandlerVerbosityFiltersTrace(t *testing.T) {
	out := new(bytes.Buffer)
	glog := NewGlogHandler(NewTerminalHandlerWithLevel(out, LevelTrace, false))
	glog.Verbosity(LevelCrit)
	logger := NewLogger(glog)

	logger.Warn("should not be seen")
	require.Empty(t, out.String())

	require.NoError(t, glog.Vmodule("anything.go=9"))
	logger.Trace("now visible", "k", "v")
	require.Contains(t, out.String(), "now visible")
}

func TestJSONHandlerIncludesDebug(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewLogger(JSONHandler(out))
	logger.Debug("hi there")
	require.NotEmpty(t, out.String())

	out.Reset()
	logger = NewLogger(JSONHandlerWithLevel(out, slog.Level(LevelInfo)))
	logger.Debug("hi there")
	require.Empty(t, out.String())
}

func TestLoggerWithAttachesContext(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewLogger(NewTerminalHandler(out, false))
	child := logger.New("component", "driver")
	child.Info("started")

	require.True(t, strings.Contains(out.String(), "component=driver"))
}
