package logger

import (
	"io"
	"log"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the service logger: local writes debug text to stdout,
// dev and prod write to a rotated file at logPath.
func SetupLogger(env, logPath string) *slog.Logger {
	var logger *slog.Logger
	var out io.Writer

	if env != envLocal {
		out = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		log.Printf("env: %s; log file: %s", env, logPath)
	}

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log.Fatal("invalid environment: ", env)
	}

	return logger
}

// WithTelegram duplicates records at minLevel and above to the notifier.
// The returned func flushes pending alerts and must be called on shutdown.
func WithTelegram(logger *slog.Logger, notifier Notifier, minLevel slog.Level) (*slog.Logger, func()) {
	if notifier == nil {
		return logger, func() {}
	}
	handler := NewTelegramHandler(logger.Handler(), notifier, minLevel)
	return slog.New(handler), handler.Close
}
