package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/easyplus-cash-ledger/internal/config"
)

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

// New builds a JSON logger writing to w. Source locations are added at debug level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}

// NewLogger creates the process logger, tagged with the service name and environment
func NewLogger(cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)
	logger := New(os.Stdout, level).With(
		"service", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	logger.Info("Logger initialized", "level", level.String())

	return logger
}
