package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the regularity service.
// Environment variables are parsed from the REGULARITY_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store selection
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/regularity.db"`

	// Engine configuration. Two same-name activities closer than the
	// buffer are treated as one continuous activity.
	ContiguityBufferSeconds int `envconfig:"CONTIGUITY_BUFFER_SECONDS" default:"5"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// Validate checks driver selection and cross-field requirements.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("REGULARITY_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("REGULARITY_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.ContiguityBufferSeconds < 0 {
		return fmt.Errorf("CONTIGUITY_BUFFER_SECONDS must not be negative")
	}
	return nil
}

// ContiguityBuffer returns the configured buffer as a duration.
func (c *Config) ContiguityBuffer() time.Duration {
	return time.Duration(c.ContiguityBufferSeconds) * time.Second
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// New creates a new Config by parsing environment variables.
// Example: REGULARITY_HTTP_PORT, REGULARITY_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("REGULARITY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Int("contiguity_buffer_seconds", cfg.ContiguityBufferSeconds).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}
