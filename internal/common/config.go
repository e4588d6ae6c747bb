// Package common provides shared utilities for Symphony
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Symphony
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Dashboard   DashboardConfig `toml:"dashboard"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects where insight documents are read from.
// Backend is "s3" (default) or "file". Prefix is the top-level key segment
// under which dated output folders live.
type StorageConfig struct {
	Backend string     `toml:"backend"`
	Prefix  string     `toml:"prefix"`
	File    FileConfig `toml:"file"`
	S3      S3Config   `toml:"s3"`
}

// FileConfig holds local directory configuration for the file backend.
type FileConfig struct {
	BasePath string `toml:"base_path"`
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`   // AWS region (e.g., "us-east-1")
	Endpoint  string `toml:"endpoint"` // Custom endpoint for S3-compatible stores (MinIO, R2)
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
}

// YahooConfig holds Yahoo Finance chart API configuration.
// RateLimit of 0 leaves outbound requests unthrottled.
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DashboardConfig configures the terminal dashboard client.
type DashboardConfig struct {
	APIURL          string `toml:"api_url"`
	RefreshInterval string `toml:"refresh_interval"`
	Timeout         string `toml:"timeout"`
}

// GetRefreshInterval parses the quote polling interval, defaulting to one minute.
func (c *DashboardConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// GetTimeout parses and returns the timeout duration
func (c *DashboardConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "s3",
			Prefix:  "outputs",
			File:    FileConfig{BasePath: "data"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com/v8/finance/chart",
				RateLimit: 0,
				Timeout:   "30s",
			},
		},
		Dashboard: DashboardConfig{
			APIURL:          "http://localhost:8080",
			RefreshInterval: "60s",
			Timeout:         "30s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/symphony.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
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

	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	config.Storage.Prefix = strings.Trim(config.Storage.Prefix, "/")

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The AWS_* names match the variables the insights deployment already exports.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SYMPHONY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SYMPHONY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SYMPHONY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SYMPHONY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("SYMPHONY_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("SYMPHONY_STORAGE_PATH"); path != "" {
		config.Storage.File.BasePath = path
	}

	if url := os.Getenv("SYMPHONY_API_URL"); url != "" {
		config.Dashboard.APIURL = url
	}

	// S3 overrides
	if v := os.Getenv("AWS_REGION"); v != "" {
		config.Storage.S3.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY"); v != "" {
		config.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		config.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("AWS_S3_BUCKET_NAME"); v != "" {
		config.Storage.S3.Bucket = v
	}
	if v := os.Getenv("AWS_S3_ENDPOINT"); v != "" {
		config.Storage.S3.Endpoint = v
	}
}

// ValidateRequired returns the names of mandatory settings that are unset.
// The server refuses to start while any are missing.
func (c *Config) ValidateRequired() []string {
	var missing []string

	switch c.Storage.Backend {
	case "file":
		if c.Storage.File.BasePath == "" {
			missing = append(missing, "storage.file.base_path")
		}
	case "s3", "":
		if c.Storage.S3.Region == "" {
			missing = append(missing, "storage.s3.region (AWS_REGION)")
		}
		if c.Storage.S3.AccessKey == "" {
			missing = append(missing, "storage.s3.access_key (AWS_ACCESS_KEY)")
		}
		if c.Storage.S3.SecretKey == "" {
			missing = append(missing, "storage.s3.secret_key (AWS_SECRET_ACCESS_KEY)")
		}
		if c.Storage.S3.Bucket == "" {
			missing = append(missing, "storage.s3.bucket (AWS_S3_BUCKET_NAME)")
		}
	default:
		missing = append(missing, fmt.Sprintf("storage.backend (unsupported value %q)", c.Storage.Backend))
	}

	if c.Clients.Yahoo.BaseURL == "" {
		missing = append(missing, "clients.yahoo.base_url")
	}

	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StorageAddress describes the configured insights source for the banner and logs.
func (c *Config) StorageAddress() string {
	if c.Storage.Backend == "file" {
		return "file://" + c.Storage.File.BasePath
	}
	if c.Storage.S3.Endpoint != "" {
		return fmt.Sprintf("s3://%s (%s)", c.Storage.S3.Bucket, c.Storage.S3.Endpoint)
	}
	return "s3://" + c.Storage.S3.Bucket
}

// ApplyFlagOverrides applies CLI flag values, which take precedence over files and env.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
