package logger

import (
	"io"
	"os"
	"strings"

	"github.com/marmos91/filegate/pkg/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger from logging configuration.
//
// The "text" format wraps output in zerolog's console writer for human
// reading; "json" emits structured lines. When Output names a file path the
// log is rotated with lumberjack using the configured size and retention
// limits.
func New(cfg config.LoggingConfig) zerolog.Logger {
	writer := newWriter(cfg)
	if cfg.Format == "text" {
		writer = zerolog.ConsoleWriter{Out: writer}
	}

	return zerolog.New(writer).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

// parseLevel maps a configured level name onto a zerolog level.
// Unknown names fall back to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// newWriter selects the log destination.
func newWriter(cfg config.LoggingConfig) io.Writer {
	switch cfg.Output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
}
