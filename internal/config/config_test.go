package config

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HYLIGOTCHI_IDENTITY", "  bob@wallet ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.APIURL != "http://localhost:4008" || cfg.IndexerURL != "http://localhost:4008" {
		t.Fatalf("expected default urls, got %q %q", cfg.APIURL, cfg.IndexerURL)
	}
	if cfg.PollInterval != 30*time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected 30s poll and 10s timeout, got %s %s", cfg.PollInterval, cfg.RequestTimeout)
	}
	if cfg.ReadRetries != 3 || cfg.ListenAddr != ":8090" {
		t.Fatalf("expected 3 retries on :8090, got %d %s", cfg.ReadRetries, cfg.ListenAddr)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Identity != "bob@wallet" {
		t.Fatalf("expected trimmed identity, got %q", cfg.Identity)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HYLIGOTCHI_API_URL", "https://node.example:4321")
	t.Setenv("HYLIGOTCHI_POLL_INTERVAL", "5s")
	t.Setenv("HYLIGOTCHI_READ_RETRIES", "1")
	t.Setenv("HYLIGOTCHI_LOG_LEVEL", "debug")
	t.Setenv("HYLIGOTCHI_CORS_ORIGINS", "http://localhost:5173,https://pet.example")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.APIURL != "https://node.example:4321" || cfg.PollInterval != 5*time.Second || cfg.ReadRetries != 1 {
		t.Fatalf("expected overrides applied, got %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://pet.example" {
		t.Fatalf("expected two cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"HYLIGOTCHI_API_URL":       "not a url",
		"HYLIGOTCHI_POLL_INTERVAL": "0s",
		"HYLIGOTCHI_READ_RETRIES":  "0",
		"HYLIGOTCHI_LOG_LEVEL":     "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("HYLIGOTCHI_POLL_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseLogLevel(t *testing.T) {
	lv, err := ParseLogLevel("WARN")
	if err != nil || lv != hlog.LevelWarn {
		t.Fatalf("expected warn level, got %v err=%v", lv, err)
	}
}
