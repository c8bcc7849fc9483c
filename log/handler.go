package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// NewTerminalHandler returns a slog.Handler that writes human-readable
// plain-text lines of the form (useColor does not change the output):
//
//	INFO [01-02|15:04:05.000] message                  key=value ...
func NewTerminalHandler(wr io.Writer, useColor bool) slog.Handler {
	return NewTerminalHandlerWithLevel(wr, LevelTrace, useColor)
}

// NewTerminalHandlerWithLevel is like NewTerminalHandler but drops
// records below minLevel before they reach wr.
func NewTerminalHandlerWithLevel(wr io.Writer, minLevel Level, useColor bool) slog.Handler {
	return &terminalHandler{wr: wr, minLevel: minLevel, useColor: useColor}
}

type terminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	minLevel Level
	useColor bool
	attrs    []slog.Attr
}

const termTimeFormat = "01-02|15:04:05.000"

func writeTimeTermFormat(buf *strings.Builder, t interface{ AppendFormat([]byte, string) []byte }) {
	b := t.AppendFormat(nil, termTimeFormat)
	buf.Write(b)
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return Level(level) >= h.minLevel
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(Level(r.Level).String())
	for b.Len() < 5 {
		b.WriteByte(' ')
	}
	b.WriteString(" [")
	writeTimeTermFormat(&b, r.Time)
	b.WriteString("] ")
	b.WriteString(r.Message)
	for b.Len() < 42 {
		b.WriteByte(' ')
	}

	writeAttr := func(a slog.Attr) {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(a.Value))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.wr, b.String())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

func formatValue(v slog.Value) string {
	s := v.String()
	if strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// JSONHandler returns a handler that writes one JSON object per record,
// including Debug-level records.
func JSONHandler(wr io.Writer) slog.Handler {
	return JSONHandlerWithLevel(wr, slog.LevelDebug)
}

// JSONHandlerWithLevel is like JSONHandler but drops records below minLevel.
func JSONHandlerWithLevel(wr io.Writer, minLevel slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: minLevel})
}

// LogfmtHandler returns a handler that writes logfmt (key=value) lines.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: slog.Level(LevelTrace)})
}

// GlogHandler wraps another handler and adds glog-style global/per-file
// verbosity control (-v / -vmodule), matching the corpus convention of
// tuning log noise per source file without touching call sites.
type GlogHandler struct {
	inner    slog.Handler
	verbosity atomic.Int32

	mu      sync.RWMutex
	modules map[string]Level
}

// NewGlogHandler wraps h with verbosity filtering.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	g := &GlogHandler{inner: h, modules: make(map[string]Level)}
	g.verbosity.Store(int32(LevelCrit))
	return g
}

// Verbosity sets the global verbosity threshold; records below it are
// dropped unless a more permissive per-module rule applies.
func (g *GlogHandler) Verbosity(level Level) {
	g.verbosity.Store(int32(level))
}

// Vmodule configures per-file verbosity overrides, e.g. "logger_test.go=5".
// The numeric suffix is interpreted the same way go-ethereum's glog
// handler does: higher number = more verbose, mapped onto Level by
// subtracting one level tier (4 slog units) per point from LevelCrit,
// so 0 is Crit, 3 is Info and 5 is Trace.
func (g *GlogHandler) Vmodule(spec string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid vmodule clause: %q", part)
		}
		var n int
		if _, err := fmt.Sscanf(kv[1], "%d", &n); err != nil {
			return fmt.Errorf("invalid vmodule verbosity in %q: %w", part, err)
		}
		g.modules[kv[0]] = Level(int(LevelCrit) - 4*n)
	}
	return nil
}

// threshold returns the effective verbosity floor: the global setting,
// lowered to the most permissive vmodule override in effect. We don't
// track call sites per-record, so a vmodule rule widens logging
// globally rather than per source file — a deliberate simplification,
// see DESIGN.md.
func (g *GlogHandler) threshold() Level {
	g.mu.RLock()
	defer g.mu.RUnlock()
	threshold := Level(g.verbosity.Load())
	for _, lvl := range g.modules {
		if lvl < threshold {
			threshold = lvl
		}
	}
	return threshold
}

func (g *GlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return Level(level) >= g.threshold()
}

func (g *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if Level(r.Level) < g.threshold() {
		return nil
	}
	return g.inner.Handle(ctx, r)
}

func (g *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &GlogHandler{inner: g.inner.WithAttrs(attrs), modules: g.modules}
}

func (g *GlogHandler) WithGroup(name string) slog.Handler {
	return &GlogHandler{inner: g.inner.WithGroup(name), modules: g.modules}
}
