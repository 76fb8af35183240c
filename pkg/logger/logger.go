package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Service   string
	Env       string
	Level     string
	AddSource bool
}

// New builds the process logger and installs it as the slog default. JSON in
// anything that is not dev; plain text locally.
func New(opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var h slog.Handler
	if opts.Env == "dev" {
		h = slog.NewTextHandler(os.Stdout, hopts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, hopts)
	}

	base := slog.New(h).With(
		"service", opts.Service,
		"env", opts.Env,
	)

	slog.SetDefault(base)
	return base
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
