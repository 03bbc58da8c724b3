// Package logger builds the application's slog logger from configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// New initializes a slog logger. When output is nil the writer is chosen from
// cfg.Output; tests pass an explicit buffer instead.
func New(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = writerFor(cfg.Output)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

func writerFor(output string) io.Writer {
	switch output {
	case "stdout":
		return os.Stdout
	case "file":
		file, err := os.OpenFile("reviewbot.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return os.Stderr
		}
		return file
	default:
		// Log lines go to stderr so the posted-review count on stdout stays
		// machine-readable.
		return os.Stderr
	}
}
