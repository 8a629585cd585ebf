package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger инициализирует глобальный slog-логгер.
//
// Уровень берётся из LOG_LEVEL (DEBUG, INFO, WARN, ERROR; по умолчанию
// INFO), формат — из LOG_FORMAT: "text" для разработки, любое другое
// значение даёт JSON.
func SetupLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
