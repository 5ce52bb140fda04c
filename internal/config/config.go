// ABOUTME: Configuration loading and parsing for expense-tracker
// ABOUTME: Supports YAML files with env var expansion, env overrides, and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default token lifetimes. The access TTL is deliberately short: access
// tokens are never checked against the store, so this value bounds how long
// a revoked session can keep using one.
const (
	DefaultAccessTTL  = 30 * time.Second
	DefaultRefreshTTL = 24 * time.Hour
)

// Config represents the complete expense-tracker configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Cookie     CookieConfig     `yaml:"cookie"`
	Categories CategoriesConfig `yaml:"categories"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr   string `yaml:"http_addr" env:"EXPENSE_TRACKER_HTTP_ADDR"`
	CORSOrigin string `yaml:"cors_origin" env:"EXPENSE_TRACKER_CORS_ORIGIN"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" env:"EXPENSE_TRACKER_DB_PATH"`
}

// AuthConfig holds token signing configuration. Access and refresh tokens
// use separate secrets so one kind can never verify as the other.
type AuthConfig struct {
	AccessSecret  string `yaml:"access_secret" env:"EXPENSE_TRACKER_ACCESS_SECRET"`
	RefreshSecret string `yaml:"refresh_secret" env:"EXPENSE_TRACKER_REFRESH_SECRET"`

	AccessTTL  time.Duration `yaml:"-"`
	RefreshTTL time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	AccessTTLRaw  string `yaml:"access_ttl" env:"EXPENSE_TRACKER_ACCESS_TTL"`
	RefreshTTLRaw string `yaml:"refresh_ttl" env:"EXPENSE_TRACKER_REFRESH_TTL"`
}

// CookieConfig holds attributes for the refresh token cookie
type CookieConfig struct {
	Secure   bool   `yaml:"secure" env:"EXPENSE_TRACKER_COOKIE_SECURE"`
	SameSite string `yaml:"same_site" env:"EXPENSE_TRACKER_COOKIE_SAME_SITE"`
}

// CategoriesConfig points at an optional TOML catalog of suggested
// categories. When empty the built-in catalog is served.
type CategoriesConfig struct {
	Path string `yaml:"path" env:"EXPENSE_TRACKER_CATEGORIES_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"EXPENSE_TRACKER_LOG_LEVEL"`
	Format string `yaml:"format" env:"EXPENSE_TRACKER_LOG_FORMAT"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded, then
// EXPENSE_TRACKER_* environment variables override individual fields.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Environment overrides win over file values
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills fields that may be omitted from the config file
func (c *Config) applyDefaults() {
	if c.Auth.AccessTTLRaw == "" {
		c.Auth.AccessTTLRaw = DefaultAccessTTL.String()
	}
	if c.Auth.RefreshTTLRaw == "" {
		c.Auth.RefreshTTLRaw = DefaultRefreshTTL.String()
	}
	if c.Cookie.SameSite == "" {
		c.Cookie.SameSite = "lax"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.AccessSecret == "" {
		return fmt.Errorf("auth.access_secret is required")
	}
	if c.Auth.RefreshSecret == "" {
		return fmt.Errorf("auth.refresh_secret is required")
	}

	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("auth.access_ttl must be positive")
	}
	if c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("auth.refresh_ttl must be positive")
	}
	if c.Auth.AccessTTL > c.Auth.RefreshTTL {
		return fmt.Errorf("auth.access_ttl must not exceed auth.refresh_ttl")
	}

	switch c.Cookie.SameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("cookie.same_site must be one of lax, strict, none (got %q)", c.Cookie.SameSite)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.AccessTTLRaw != "" {
		cfg.Auth.AccessTTL, err = time.ParseDuration(cfg.Auth.AccessTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing access_ttl %q: %w", cfg.Auth.AccessTTLRaw, err)
		}
	}

	if cfg.Auth.RefreshTTLRaw != "" {
		cfg.Auth.RefreshTTL, err = time.ParseDuration(cfg.Auth.RefreshTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing refresh_ttl %q: %w", cfg.Auth.RefreshTTLRaw, err)
		}
	}

	return nil
}
