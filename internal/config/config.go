// Package config reads the game's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Dialogue provider kinds.
const (
	DialogueWebSocket = "ws"
	DialogueHTTP      = "http"
	DialogueOffline   = "offline"
)

// DefaultAPIBase is used when neither API_URL nor a secure page origin is set.
const DefaultAPIBase = "http://localhost:8000"

// ErrInvalid is returned for settings that parse but make no sense.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every environment-driven setting.
type Config struct {
	APIURL       string        `env:"API_URL"`
	PageOrigin   string        `env:"BABILONIA_PAGE_ORIGIN"`
	WorldFile    string        `env:"BABILONIA_WORLD"`
	WatchWorld   bool          `env:"BABILONIA_WATCH_WORLD"`
	Dialogue     string        `env:"BABILONIA_DIALOGUE"      envDefault:"ws"`
	Tick         time.Duration `env:"BABILONIA_TICK"          envDefault:"50ms"`
	ResetTimeout time.Duration `env:"BABILONIA_RESET_TIMEOUT" envDefault:"5s"`
	VictoryDelay time.Duration `env:"BABILONIA_VICTORY_DELAY" envDefault:"2s"`
	Seed         int64         `env:"BABILONIA_SEED"`
	LogFile      string        `env:"BABILONIA_LOG_FILE"`
	Level        string        `env:"LOG_LEVEL"               envDefault:"info"`
	Environment  string        `env:"ENVIRONMENT"             envDefault:"development"`

	// APIBase is derived from APIURL and PageOrigin by Load.
	APIBase string `env:"-"`
}

// Load parses the environment, validates it and resolves the API base URL.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.APIBase = ResolveAPIBase(cfg.APIURL, cfg.PageOrigin)
	return &cfg, nil
}

// Validate checks the values env.Parse cannot.
func (c *Config) Validate() error {
	switch c.Dialogue {
	case DialogueWebSocket, DialogueHTTP, DialogueOffline:
	default:
		return fmt.Errorf("%w: BABILONIA_DIALOGUE=%q (want ws, http or offline)", ErrInvalid, c.Dialogue)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: BABILONIA_TICK must be positive", ErrInvalid)
	}
	if c.ResetTimeout <= 0 {
		return fmt.Errorf("%w: BABILONIA_RESET_TIMEOUT must be positive", ErrInvalid)
	}
	if c.VictoryDelay < 0 {
		return fmt.Errorf("%w: BABILONIA_VICTORY_DELAY must not be negative", ErrInvalid)
	}
	return nil
}

// LogLevel maps the LOG_LEVEL name onto a slog level; unknown names mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
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

// Production reports whether ENVIRONMENT selects production behaviour.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// ResolveAPIBase picks the dialogue and reset service URL. An explicit
// apiURL wins. Otherwise an https page origin maps its UI port 8080 to the
// API port 8000 on the same host. Everything else falls back to localhost.
func ResolveAPIBase(apiURL, pageOrigin string) string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	if pageOrigin != "" {
		u, err := url.Parse(pageOrigin)
		if err == nil && u.Scheme == "https" && u.Hostname() != "" {
			return "https://" + strings.Replace(u.Hostname(), "8080", "8000", 1)
		}
	}
	return DefaultAPIBase
}
