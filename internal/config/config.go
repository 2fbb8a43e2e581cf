// ABOUTME: Configuration loading and parsing for linkdeck
// ABOUTME: YAML files with environment variable expansion plus env overrides for secrets

package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left unset
const (
	DefaultHTTPAddr         = "0.0.0.0:8080"
	DefaultEditSessionHours = 168 // 7 days
	DefaultViewSessionHours = 1
	DefaultMaxLinks         = 50
)

// Config represents the complete linkdeck configuration. It is built once
// at process start and passed by value into the components that need it;
// nothing reads the environment at request time.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Access  AccessConfig  `yaml:"access"`
	Links   LinksConfig   `yaml:"links"`
	Site    SiteConfig    `yaml:"site"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StoreConfig selects and configures the link store backend
type StoreConfig struct {
	// Backend is one of "sqlite", "redis", "memory"
	Backend string       `yaml:"backend"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
}

// SQLiteConfig holds the embedded database configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds the external KV configuration
type RedisConfig struct {
	// URL in the form redis://:password@host:6379/0
	URL string `yaml:"url"`
}

// AccessConfig holds the two tier secrets and session lifetimes. An empty
// secret disables that tier's protection.
type AccessConfig struct {
	EditSecret       string `yaml:"edit_secret" env:"LINKDECK_EDIT_SECRET"`
	ViewSecret       string `yaml:"view_secret" env:"LINKDECK_VIEW_SECRET"`
	EditSessionHours int    `yaml:"edit_session_hours"`
	ViewSessionHours int    `yaml:"view_session_hours"`
}

// LinksConfig holds editing-layer limits
type LinksConfig struct {
	MaxCount int `yaml:"max_count"`
}

// SiteConfig holds presentation settings
type SiteConfig struct {
	Title string `yaml:"title"`
	// Intro is Markdown rendered above the link list
	Intro string `yaml:"intro"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded,
// and the LINKDECK_* environment overrides are applied last so secrets can
// live outside the file entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration purely from environment variables and
// defaults, for deployments that run without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration with all defaults filled in
func Default() *Config {
	return &Config{
		Server: ServerConfig{HTTPAddr: DefaultHTTPAddr},
		Store: StoreConfig{
			Backend: "sqlite",
			SQLite:  SQLiteConfig{Path: "linkdeck.db"},
		},
		Access: AccessConfig{
			EditSessionHours: DefaultEditSessionHours,
			ViewSessionHours: DefaultViewSessionHours,
		},
		Links: LinksConfig{MaxCount: DefaultMaxLinks},
		Site:  SiteConfig{Title: "Links"},
	}
}

// applyEnvOverrides parses LINKDECK_* environment variables into the
// access section. Values from the environment win over the file.
func applyEnvOverrides(cfg *Config) error {
	return env.Parse(&cfg.Access)
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Store.Backend {
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case "redis":
		if c.Store.Redis.URL == "" {
			return fmt.Errorf("store.redis.url is required for the redis backend")
		}
	case "memory":
		// nothing to configure
	default:
		return fmt.Errorf("store.backend must be one of sqlite, redis, memory (got %q)", c.Store.Backend)
	}

	if c.Access.EditSessionHours <= 0 {
		return fmt.Errorf("access.edit_session_hours must be positive")
	}
	if c.Access.ViewSessionHours <= 0 {
		return fmt.Errorf("access.view_session_hours must be positive")
	}
	if c.Links.MaxCount <= 0 {
		return fmt.Errorf("links.max_count must be positive")
	}

	return nil
}
