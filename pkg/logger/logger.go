package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Output is where Init writes. CLI commands that print results to stdout
// point it at stderr.
var Output io.Writer = os.Stdout

func Init(env string) {
	InitWithLevel(env, "")
}

// InitWithLevel builds the process logger. An empty level keeps the
// environment default (info in production, debug elsewhere).
func InitWithLevel(env, level string) {
	InitWithFormat(env, level, "")
}

// InitWithFormat also lets "json" or "text" override the handler picked
// from env.
func InitWithFormat(env, level, format string) {
	var handler slog.Handler

	lvl := parseLevel(level, env)
	useJSON := env == "production"
	switch strings.ToLower(format) {
	case "json":
		useJSON = true
	case "text":
		useJSON = false
	}
	if useJSON {
		handler = slog.NewJSONHandler(Output, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(Output, &slog.HandlerOptions{Level: lvl})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

func parseLevel(level, env string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
