package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Server.Mode)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Scraper.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Scraper.DefaultTimeout)
	}
	if cfg.Scraper.MaxTimeout != 120*time.Second {
		t.Errorf("MaxTimeout = %v, want 120s", cfg.Scraper.MaxTimeout)
	}
	if !cfg.Scraper.EnableStatic || !cfg.Scraper.EnableDynamic {
		t.Error("both scrape modes should default to enabled")
	}
	if cfg.Auth.Enabled {
		t.Error("auth should default to disabled")
	}
	if cfg.Store.Enabled {
		t.Error("store should default to disabled")
	}
	if cfg.Store.Path != "gleaner.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GLEANER_PORT", "9191")
	t.Setenv("GLEANER_HEADLESS", "false")
	t.Setenv("GLEANER_DEFAULT_TIMEOUT", "45s")
	t.Setenv("GLEANER_API_KEYS", "alpha, beta ,gamma")
	t.Setenv("GLEANER_RATE_RPS", "2.5")
	t.Setenv("GLEANER_STORE_ENABLED", "true")

	cfg := Load()

	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Scraper.DefaultTimeout != 45*time.Second {
		t.Errorf("DefaultTimeout = %v, want 45s", cfg.Scraper.DefaultTimeout)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(cfg.Auth.APIKeys) != len(want) {
		t.Fatalf("APIKeys = %v, want %v", cfg.Auth.APIKeys, want)
	}
	for i, k := range want {
		if cfg.Auth.APIKeys[i] != k {
			t.Errorf("APIKeys[%d] = %q, want %q", i, cfg.Auth.APIKeys[i], k)
		}
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
	if !cfg.Store.Enabled {
		t.Error("Store.Enabled should be true")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("GLEANER_PORT", "not-a-number")
	t.Setenv("GLEANER_HEADLESS", "yes please")
	t.Setenv("GLEANER_MAX_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should fall back to true")
	}
	if cfg.Scraper.MaxTimeout != 120*time.Second {
		t.Errorf("MaxTimeout = %v, want fallback 120s", cfg.Scraper.MaxTimeout)
	}
}
