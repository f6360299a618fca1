package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Store     StoreConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the headless browser used by dynamic mode.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL used for all requests.
	DefaultProxy string
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout is the max time for navigation plus the initial
	// render wait.
	NavigationTimeout time.Duration // default: 30s

	// UserAgent is sent by the static fetcher.
	UserAgent string

	// EnableStatic/EnableDynamic toggle the two acquisition modes.
	EnableStatic  bool // default: true
	EnableDynamic bool // default: true

	// EnableScreenshots toggles screenshot capture in dynamic mode.
	EnableScreenshots bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// StoreConfig controls scrape-history persistence.
type StoreConfig struct {
	// Enabled toggles persistence of scrape outcomes.
	Enabled bool // default: false

	// Path is the SQLite database file. ":memory:" for ephemeral storage.
	Path string // default: "gleaner.db"
}

// WebhookConfig controls outbound webhook delivery.
type WebhookConfig struct {
	// Secret signs webhook payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("GLEANER_HOST", "0.0.0.0"),
			Port: envIntOr("GLEANER_PORT", 8080),
			Mode: envOr("GLEANER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("GLEANER_HEADLESS", true),
			NoSandbox:    envBoolOr("GLEANER_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("GLEANER_BROWSER_BIN"),
			DefaultProxy: os.Getenv("GLEANER_PROXY"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:    envDurationOr("GLEANER_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("GLEANER_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("GLEANER_NAV_TIMEOUT", 30*time.Second),
			UserAgent:         envOr("GLEANER_USER_AGENT", defaultUserAgent),
			EnableStatic:      envBoolOr("GLEANER_ENABLE_STATIC", true),
			EnableDynamic:     envBoolOr("GLEANER_ENABLE_DYNAMIC", true),
			EnableScreenshots: envBoolOr("GLEANER_ENABLE_SCREENSHOTS", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("GLEANER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("GLEANER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GLEANER_RATE_RPS", 5.0),
			Burst:             envIntOr("GLEANER_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("GLEANER_CACHE_MAX_ENTRIES", 1000),
		},
		Store: StoreConfig{
			Enabled: envBoolOr("GLEANER_STORE_ENABLED", false),
			Path:    envOr("GLEANER_STORE_PATH", "gleaner.db"),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("GLEANER_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("GLEANER_LOG_LEVEL", "info"),
			Format: envOr("GLEANER_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
