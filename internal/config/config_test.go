package config

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestResolveAPIBase(t *testing.T) {
	cases := []struct {
		name   string
		apiURL string
		origin string
		want   string
	}{
		{"explicit wins", "https://api.example.com/", "https://ui-8080.example.com", "https://api.example.com"},
		{"https origin swaps port", "", "https://babilonia-8080.app.dev", "https://babilonia-8000.app.dev"},
		{"https origin without port marker", "", "https://babilonia.example.com", "https://babilonia.example.com"},
		{"https origin drops explicit port", "", "https://host:443", "https://host"},
		{"http origin uses default", "", "http://localhost:8080", DefaultAPIBase},
		{"garbage origin uses default", "", "::not a url", DefaultAPIBase},
		{"nothing set", "", "", DefaultAPIBase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveAPIBase(tc.apiURL, tc.origin); got != tc.want {
				t.Errorf("ResolveAPIBase(%q, %q) = %q; want %q", tc.apiURL, tc.origin, got, tc.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"API_URL", "BABILONIA_PAGE_ORIGIN", "BABILONIA_DIALOGUE", "BABILONIA_TICK",
		"BABILONIA_RESET_TIMEOUT", "BABILONIA_VICTORY_DELAY", "LOG_LEVEL", "ENVIRONMENT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dialogue != DialogueWebSocket {
		t.Errorf("Dialogue = %q; want ws", cfg.Dialogue)
	}
	if cfg.Tick != 50*time.Millisecond || cfg.ResetTimeout != 5*time.Second || cfg.VictoryDelay != 2*time.Second {
		t.Errorf("timings = %v/%v/%v", cfg.Tick, cfg.ResetTimeout, cfg.VictoryDelay)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Production() {
		t.Error("default environment should be development")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_URL", "http://api:9000")
	t.Setenv("BABILONIA_DIALOGUE", "offline")
	t.Setenv("BABILONIA_TICK", "20ms")
	t.Setenv("BABILONIA_SEED", "42")
	t.Setenv("BABILONIA_WATCH_WORLD", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "http://api:9000" || cfg.Dialogue != DialogueOffline || cfg.Tick != 20*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Seed != 42 || !cfg.WatchWorld {
		t.Errorf("seed/watch = %d/%v", cfg.Seed, cfg.WatchWorld)
	}
	if cfg.LogLevel() != slog.LevelDebug || !cfg.Production() {
		t.Errorf("level/production = %v/%v", cfg.LogLevel(), cfg.Production())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"BABILONIA_DIALOGUE": "carrier-pigeon",
		"BABILONIA_TICK":     "0s",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v; want ErrInvalid", err)
			}
		})
	}
	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("BABILONIA_RESET_TIMEOUT", "soon")
		if _, err := Load(); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for name, want := range cases {
		c := &Config{Level: name}
		if got := c.LogLevel(); got != want {
			t.Errorf("LogLevel(%q) = %v; want %v", name, got, want)
		}
	}
}
