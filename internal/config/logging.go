package config

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// NewLogger returns a JSON slog logger whose timestamp is written as "ts" in loc.
func NewLogger(w io.Writer, level string, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
