package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatZerolog = "zerolog"
)

// New builds a Logger writing to w in the given format at the given level
// ("debug", "info", "warn", "error"). Unknown values fall back to JSON/info.
func New(w io.Writer, format, level string) Logger {
	switch strings.ToLower(format) {
	case FormatZerolog:
		zerolog.TimeFieldFormat = time.RFC3339
		zl := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
		return NewZerologLogger(zl)
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})))
	default:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
