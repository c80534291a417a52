package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for prepline-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Notification fan-out configuration
	Notifications NotificationConfig `yaml:"notifications"`

	// Evidence photo upload configuration
	Uploads UploadConfig `yaml:"uploads"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// SigningKey verifies bearer tokens issued by the identity service.
	// Secret - env only.
	SigningKey string `yaml:"-" env:"AUTH_SIGNING_KEY"`

	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development without the identity service.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"prepline"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"prepline_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// NotificationConfig holds fan-out settings for CCP failure alerts.
type NotificationConfig struct {
	// OpsMailbox receives service-stop alerts in addition to manager
	// recipients.
	OpsMailbox string `yaml:"ops_mailbox" env:"NOTIFICATIONS_OPS_MAILBOX" env-default:"operations@prepline.io"`
	// DispatchTimeoutSeconds bounds the whole fan-out for one event.
	DispatchTimeoutSeconds int `yaml:"dispatch_timeout_seconds" env:"NOTIFICATIONS_DISPATCH_TIMEOUT_SECONDS" env-default:"10"`
}

// UploadConfig holds evidence photo storage settings.
type UploadConfig struct {
	// Dir is the local directory evidence photos are written to.
	Dir string `yaml:"dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	// PublicBaseURL prefixes stored photo paths in returned URLs.
	PublicBaseURL string `yaml:"public_base_url" env:"UPLOADS_PUBLIC_BASE_URL" env-default:"/uploads"`
	// MaxSizeBytes rejects oversized evidence photos.
	MaxSizeBytes int64 `yaml:"max_size_bytes" env:"UPLOADS_MAX_SIZE_BYTES" env-default:"10485760"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Environment variables override YAML values. Secrets (PGPASSWORD,
// AUTH_SIGNING_KEY) must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.SigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when auth verification is enabled")
	}
	if c.Notifications.DispatchTimeoutSeconds <= 0 {
		return fmt.Errorf("notifications dispatch timeout must be positive")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
