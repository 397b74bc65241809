package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the typed, validated configuration for the nasdecode service:
// capture input/output directories, logging, and the optional web/auth/
// storage stack started with --serve. The dynamic Manager in manager.go
// layers on top of this for runtime patching once the service is up.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
	Serve   ServeConfig   `yaml:"serve"`
}

// CaptureConfig controls the batch capture-file walk.
type CaptureConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	Pattern   string `yaml:"pattern"`
	Workers   int    `yaml:"workers"`
}

// LoggingConfig mirrors internal/logger.Config, kept separate so the YAML
// schema doesn't leak logger package internals.
type LoggingConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ServeConfig is only consulted when the CLI is run with --serve.
type ServeConfig struct {
	Enabled            bool          `yaml:"enabled"`
	WebPort            int           `yaml:"web_port"`
	JWTSecret          string        `yaml:"jwt_secret"`
	TokenExpiryMinutes int           `yaml:"token_expiry_minutes"`
	Users              []UserConfig  `yaml:"users"`
	Storage            StorageConfig `yaml:"storage"`
}

// UserConfig is one account the auth service registers at startup. Password
// is a bcrypt hash, never plaintext, matching how the teacher's operators
// provision accounts out of band.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// StorageConfig configures the PostgreSQL sink in pkg/storage.
type StorageConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the minimum fields the CLI needs to run.
func (c *Config) Validate() error {
	if c.Capture.InputDir == "" {
		return fmt.Errorf("config: capture.input_dir is required")
	}
	if c.Capture.OutputDir == "" {
		return fmt.Errorf("config: capture.output_dir is required")
	}
	if c.Serve.Enabled {
		if c.Serve.WebPort == 0 {
			return fmt.Errorf("config: serve.web_port is required when serve.enabled")
		}
		if c.Serve.JWTSecret == "" {
			return fmt.Errorf("config: serve.jwt_secret is required when serve.enabled")
		}
	}
	return nil
}
