package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Config is read from the "log" config section.
type Config struct {
	Level  string       `yaml:"level" env:"LOG_LEVEL"`
	Format string       `yaml:"format" env:"LOG_FORMAT"`
	Sentry SentryConfig `yaml:"sentry" envPrefix:"SENTRY_"`
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New creates a logger writing to w in the configured format.
// A Sentry handler is attached when cfg.Sentry.DSN is set.
func New(cfg Config, w io.Writer, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	if sh := newSentryHandler(cfg.Sentry, base); sh != nil {
		base = newMultiHandler(base, sh)
	}

	return slog.New(NewLogHandlerDecorator(base, extractors...))
}
