// Package config provides application configuration management from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog source kinds
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// ErrInvalidConfig is wrapped by every configuration error
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	APIPort  string
	APIHost  string
	LogLevel string

	CatalogSource  string
	CatalogURL     string
	CatalogFile    string
	DatabaseURL    string
	CatalogTimeout time.Duration
	CatalogRetries int

	RequestTimeout      time.Duration
	DefaultLimit        int
	MaxLimit            int
	UIFallbackThreshold int
	ScoringPresetsFile  string
	Brands              []string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present; real environment values win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CatalogSource:      strings.ToLower(getEnv("CATALOG_SOURCE", SourceHTTP)),
		CatalogURL:         getEnv("CATALOG_URL", "https://fakestoreapi.com"),
		CatalogFile:        getEnv("CATALOG_FILE", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ScoringPresetsFile: getEnv("SCORING_PRESETS_FILE", ""),
		Brands:             splitList(getEnv("BRANDS", "")),
	}

	var err error
	if cfg.CatalogTimeout, err = getDuration("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CatalogRetries, err = getInt("CATALOG_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.DefaultLimit, err = getInt("DEFAULT_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.MaxLimit, err = getInt("MAX_LIMIT", 50); err != nil {
		return nil, err
	}
	if cfg.UIFallbackThreshold, err = getInt("UI_FALLBACK_THRESHOLD", 70); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.APIHost + ":" + c.APIPort
}

func (c *Config) validate() error {
	switch c.CatalogSource {
	case SourceHTTP:
		if c.CatalogURL == "" {
			return fmt.Errorf("%w: CATALOG_URL is required for the http source", ErrInvalidConfig)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres source", ErrInvalidConfig)
		}
	case SourceFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("%w: CATALOG_FILE is required for the file source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown CATALOG_SOURCE %q", ErrInvalidConfig, c.CatalogSource)
	}

	if c.CatalogRetries < 0 {
		return fmt.Errorf("%w: CATALOG_RETRIES must not be negative", ErrInvalidConfig)
	}
	if c.MaxLimit < 1 || c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("%w: need 1 <= DEFAULT_LIMIT (%d) <= MAX_LIMIT (%d)", ErrInvalidConfig, c.DefaultLimit, c.MaxLimit)
	}
	if c.UIFallbackThreshold < 0 || c.UIFallbackThreshold > 95 {
		return fmt.Errorf("%w: UI_FALLBACK_THRESHOLD must be within 0..95", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a positive duration", ErrInvalidConfig, key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
