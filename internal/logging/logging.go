// Package logging configures slog for the player. Output goes to a file so
// log lines never land on the terminal the TUI draws on.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/spynners/spynners/internal/config"
)

const logFileName = "spynners.log"

// Setup opens the configured log file (the XDG state dir by default),
// installs a text handler at the configured level as the default logger
// and returns it with the file to close on exit.
func Setup(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	path := cfg.File
	if path == "" {
		var err error
		path, err = xdg.StateFile(filepath.Join("spynners", logFileName))
		if err != nil {
			return nil, nil, fmt.Errorf("resolve log path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := New(f, cfg.Level)
	slog.SetDefault(logger)
	return logger, f, nil
}

// New returns a text logger writing to w at level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
