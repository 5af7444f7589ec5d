package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

func New() Logger {
	return NewWithLevel("")
}

// NewWithLevel builds a JSON logger on stderr. Unknown levels fall back to info.
func NewWithLevel(level string) Logger {
	return newJSONLogger(os.Stderr, parseLevel(level))
}

// Discard is used by commands whose stdout/stderr belongs to the user.
func Discard() Logger {
	return newJSONLogger(io.Discard, slog.LevelError)
}

func newJSONLogger(w io.Writer, level slog.Level) Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // include file + line number
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
