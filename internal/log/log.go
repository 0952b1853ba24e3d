// Package log builds the application's structured logger. The terminal
// belongs to the UI, so records only ever go to the configured file.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/wooterm/internal/config"
)

// LevelOff disables logging when used as logging.level
const LevelOff = "off"

// maxLogSize is the size above which the log file is truncated at startup
const maxLogSize = 10 << 20

// Setup returns a JSON logger appending to cfg.File and a func closing it.
// The logger is always usable: if the file cannot be opened it discards
// records, and err says why.
func Setup(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if strings.EqualFold(cfg.Level, LevelOff) {
		return NullLogger(), noop, nil
	}
	if cfg.File == "" {
		return NullLogger(), noop, fmt.Errorf("logging.file is empty")
	}

	f, err := openLogFile(cfg.File)
	if err != nil {
		return NullLogger(), noop, err
	}

	level, known := ParseLevel(cfg.Level)
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})).
		With("app", "wooterm", "pid", os.Getpid())
	if !known {
		logger.Warn("unknown logging.level, using INFO", "value", cfg.Level)
	}
	return logger, f.Close, nil
}

// openLogFile opens path for appending, starting over once it has grown past maxLogSize.
// The file may hold store URLs, so it is private to the user.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ParseLevel reads a logging.level value. Unknown values give INFO and false.
func ParseLevel(level string) (slog.Level, bool) {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn, true
	}
	if level == "" {
		return slog.LevelInfo, true
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, false
	}
	return l, true
}

// NullLogger returns a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
