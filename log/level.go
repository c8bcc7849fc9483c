package log

import "log/slog"

// Level mirrors slog.Level but adds the two extra verbosity tiers the
// corpus logs at: Trace (below Debug) and Crit (above Error).
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
	LevelCrit  Level = Level(slog.LevelError + 4)
)

func (l Level) String() string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARN"
	case l < LevelCrit:
		return "ERROR"
	default:
		return "CRIT"
	}
}
