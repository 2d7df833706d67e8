// Package common provides shared utilities for the aggregation service
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the service
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Holdings    HoldingsConfig   `toml:"holdings"`
	Clients     ClientsConfig    `toml:"clients"`
	Aggregator  AggregatorConfig `toml:"aggregator"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// HoldingsConfig points at the static holdings file defining the instrument universe.
type HoldingsConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second (client-side token bucket)
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AggregatorConfig holds the tuning knobs for the aggregation pipeline.
// All durations are strings ("15s", "100ms") parsed via the Get* accessors.
type AggregatorConfig struct {
	CacheTTL        string `toml:"cache_ttl"`
	MaxRequests     int    `toml:"max_requests"`     // rolling-window request budget
	Window          string `toml:"window"`           // rolling-window duration
	StaggerDelay    string `toml:"stagger_delay"`    // inter-group start offset
	FetchTimeout    string `toml:"fetch_timeout"`    // per-attempt source timeout
	RetryCount      int    `toml:"retry_count"`      // retries after the first attempt
	PassTimeout     string `toml:"pass_timeout"`     // overall deadline for one pass
	RefreshInterval string `toml:"refresh_interval"` // scheduler cadence
}

// GetCacheTTL parses and returns the cache TTL duration
func (c *AggregatorConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 15*time.Second)
}

// GetWindow parses and returns the rate-limit window duration
func (c *AggregatorConfig) GetWindow() time.Duration {
	return parseDuration(c.Window, 60*time.Second)
}

// GetStaggerDelay parses and returns the stagger delay
func (c *AggregatorConfig) GetStaggerDelay() time.Duration {
	return parseDuration(c.StaggerDelay, 100*time.Millisecond)
}

// GetFetchTimeout parses and returns the per-attempt fetch timeout
func (c *AggregatorConfig) GetFetchTimeout() time.Duration {
	return parseDuration(c.FetchTimeout, 8*time.Second)
}

// GetPassTimeout parses and returns the overall pass deadline
func (c *AggregatorConfig) GetPassTimeout() time.Duration {
	return parseDuration(c.PassTimeout, 45*time.Second)
}

// GetRefreshInterval parses and returns the scheduler cadence
func (c *AggregatorConfig) GetRefreshInterval() time.Duration {
	return parseDuration(c.RefreshInterval, 15*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"` // "console" or "json"
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Holdings: HoldingsConfig{
			Path: "config/holdings.json",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Aggregator: AggregatorConfig{
			CacheTTL:        "15s",
			MaxRequests:     300,
			Window:          "60s",
			StaggerDelay:    "100ms",
			FetchTimeout:    "8s",
			RetryCount:      3,
			PassTimeout:     "45s",
			RefreshInterval: "15s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("EIGHTBYTE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("EIGHTBYTE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("EIGHTBYTE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("EIGHTBYTE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("EIGHTBYTE_HOLDINGS"); path != "" {
		config.Holdings.Path = path
	}

	for _, name := range []string{"EODHD_API_KEY", "EIGHTBYTE_EODHD_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			config.Clients.EODHD.APIKey = key
			break
		}
	}
}

// Validate checks config values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Aggregator.MaxRequests <= 0 {
		return fmt.Errorf("aggregator max_requests must be positive, got %d", c.Aggregator.MaxRequests)
	}
	if c.Aggregator.RetryCount < 0 {
		return fmt.Errorf("aggregator retry_count must be non-negative, got %d", c.Aggregator.RetryCount)
	}
	if c.Clients.EODHD.RateLimit <= 0 {
		return fmt.Errorf("eodhd rate_limit must be positive, got %d", c.Clients.EODHD.RateLimit)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
