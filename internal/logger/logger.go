// Package logger configures slog for the game. The terminal belongs to the
// UI, so logs normally go to a file under the XDG data directory.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"babilonia/internal/config"
)

// Setup builds a logger writing to w, sets it as the slog default and
// returns it. Production uses JSON; development uses text.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}

	if cfg.Production() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// OpenFile opens path for appending, creating parent directories. An empty
// path selects babilonia.log in DataDir.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "babilonia.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// DataDir returns the directory where the game keeps its files.
// Follows XDG Base Directory spec: $XDG_DATA_HOME/babilonia,
// defaulting to ~/.local/share/babilonia.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "babilonia"), nil
}

// WithError adds error to logger context.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
