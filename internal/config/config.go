// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CurrentSeason is the default NFL season used when the Yahoo game endpoint
// is not consulted (e.g. exporting already-stored data).
const CurrentSeason = 2025

// Config is populated from environment variables.
type Config struct {
	// Local data layout
	DataDir   string
	TokenFile string

	// Yahoo Fantasy Sports API
	YahooClientID     string
	YahooClientSecret string
	YahooRateLimit    int // requests per minute

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dataDir := envOr("DATA_DIR", "data")

	return &Config{
		DataDir:   dataDir,
		TokenFile: envOr("YAHOO_TOKEN_FILE", filepath.Join(dataDir, "token.json")),

		YahooClientID:     envOr("YAHOO_CLIENT_ID", ""),
		YahooClientSecret: envOr("YAHOO_CLIENT_SECRET", ""),
		YahooRateLimit:    envInt("YAHOO_RATE_LIMIT_PER_MINUTE", 60),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// RequireYahooCredentials verifies OAuth client credentials are present.
// Called before any network I/O so a missing .env fails fast.
func (c *Config) RequireYahooCredentials() error {
	if c.YahooClientID == "" || c.YahooClientSecret == "" {
		return fmt.Errorf("YAHOO_CLIENT_ID and YAHOO_CLIENT_SECRET must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
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
