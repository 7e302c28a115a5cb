package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/polkiloo/digimarket/internal/config"
)

// New creates the service JSON logger at the configured level. Every record
// carries the service name so logs from the API and the payment workers can be
// told apart once shipped.
func New(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogLevel, cfg.ServiceName)
}

func newLogger(w io.Writer, level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(handler)
	if service != "" {
		logger = logger.With(slog.String("service", service))
	}
	return logger
}

// ParseLevel maps debug, info, warn or error to a slog level. Anything else
// yields info.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
