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
	Fetcher   FetcherConfig
	Crawler   CrawlerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig

	// Constrained indicates the process runs on memory-constrained hosting.
	// It shortens wait/timeout defaults and adds memory-pressure launch flags.
	Constrained bool
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// Bin overrides the Chromium binary path. When empty and no system
	// browser is found, a one-time download is attempted.
	Bin string

	// InstallTimeout bounds the one-time browser download.
	InstallTimeout time.Duration // default: 5m

	// Constrained mirrors Config.Constrained for launch-flag selection.
	Constrained bool
}

// FetcherConfig controls page fetching behavior.
type FetcherConfig struct {
	// Timeout is the per-fetch deadline (navigation + interstitials +
	// scrolling + snapshot). Default: 30s, or 25s when constrained.
	Timeout time.Duration

	// WaitTime is the settle delay after navigation and again before the
	// final snapshot. Default: 5s, or 3s when constrained.
	WaitTime time.Duration

	// SelectorTimeout bounds the optional wait-for-selector step.
	SelectorTimeout time.Duration // default: 5s

	// Environment is a free-form tag recorded in fetch metrics.
	Environment string // "standard" or "constrained"
}

// CrawlerConfig controls the bounded crawler.
type CrawlerConfig struct {
	// MaxLinks is the default cap on detail links processed per crawl.
	MaxLinks int // default: 10

	// BatchSize is the fixed number of links fetched concurrently.
	BatchSize int // default: 3

	// BatchPause is the politeness delay between batches.
	BatchPause time.Duration // default: 1s
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

// CacheConfig controls the extraction response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
//
// The hosting-environment flag is read once here; all environment-sensitive
// defaults (timeouts, wait times, launch flags) derive from it.
func Load() *Config {
	constrained := envBoolOr("HARVEST_CONSTRAINED", os.Getenv("RENDER") != "")

	fetchTimeout := 30 * time.Second
	waitTime := 5 * time.Second
	environment := "standard"
	if constrained {
		fetchTimeout = 25 * time.Second
		waitTime = 3 * time.Second
		environment = "constrained"
	}

	return &Config{
		Server: ServerConfig{
			Host: envOr("HARVEST_HOST", "0.0.0.0"),
			Port: envIntOr("HARVEST_PORT", 8080),
			Mode: envOr("HARVEST_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("HARVEST_HEADLESS", true),
			NoSandbox:      envBoolOr("HARVEST_NO_SANDBOX", true),
			Bin:            os.Getenv("HARVEST_BROWSER_BIN"),
			InstallTimeout: envDurationOr("HARVEST_INSTALL_TIMEOUT", 5*time.Minute),
			Constrained:    constrained,
		},
		Fetcher: FetcherConfig{
			Timeout:         envDurationOr("HARVEST_FETCH_TIMEOUT", fetchTimeout),
			WaitTime:        envDurationOr("HARVEST_WAIT_TIME", waitTime),
			SelectorTimeout: envDurationOr("HARVEST_SELECTOR_TIMEOUT", 5*time.Second),
			Environment:     environment,
		},
		Crawler: CrawlerConfig{
			MaxLinks:   envIntOr("HARVEST_CRAWL_MAX_LINKS", 10),
			BatchSize:  envIntOr("HARVEST_CRAWL_BATCH_SIZE", 3),
			BatchPause: envDurationOr("HARVEST_CRAWL_BATCH_PAUSE", time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("HARVEST_AUTH_ENABLED", false),
			APIKeys: envSliceOr("HARVEST_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("HARVEST_RATE_RPS", 5.0),
			Burst:             envIntOr("HARVEST_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("HARVEST_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("HARVEST_LOG_LEVEL", "info"),
			Format: envOr("HARVEST_LOG_FORMAT", "json"),
		},
		Constrained: constrained,
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
		return result
	}
	return fallback
}
