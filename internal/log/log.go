package log

import (
	"io"
	"log/slog"
	"os"
)

var logger *slog.Logger

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init sets up logging with the given level and optional file writer.
// Terminal output only carries warnings and above so it does not interleave
// with progress lines; the file, when present, receives everything at level.
func Init(level string, fileWriter io.Writer) {
	lvl := ParseLevel(level)
	termLvl := lvl
	if termLvl < slog.LevelWarn {
		termLvl = slog.LevelWarn
	}

	if fileWriter == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: termLvl}))
		return
	}
	logger = slog.New(&teeHandler{
		term: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: termLvl}),
		file: slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: lvl}),
	})
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }
