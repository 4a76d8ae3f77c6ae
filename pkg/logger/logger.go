package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	JSON = "json"
	Text = "text"
)

// Logger wraps slog with a Fatal helper and service tagging.
type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", cfg.Service),
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// Fatal logs at error level and exits with status code 1.
// Use only for unrecoverable startup failures.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
