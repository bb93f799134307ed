// ABOUTME: Configuration loading and parsing for taskd
// ABOUTME: Supports YAML or TOML files with env var expansion, env overrides, and duration parsing

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a value is absent from both the file and the environment.
const (
	DefaultHTTPAddr       = "localhost:8080"
	DefaultTokenTTL       = 24 * time.Hour
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// minJWTSecretLength mirrors auth.MinSecretLength so a short secret fails at load time.
const minJWTSecretLength = 32

// Config represents the complete taskd configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr" env:"TASKD_HTTP_ADDR"`

	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`

	// IdempotencyTTL is how long an Idempotency-Key on POST /tasks is remembered.
	IdempotencyTTL    time.Duration `yaml:"-" toml:"-"`
	IdempotencyTTLRaw string        `yaml:"idempotency_ttl" toml:"idempotency_ttl" env:"TASKD_IDEMPOTENCY_TTL"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`   // serve HTTPS with tailnet certs
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public Funnel (implies HTTPS)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path" env:"TASKD_DB_PATH"`
}

// AuthConfig holds token signing and password hashing configuration
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" toml:"jwt_secret" env:"TASKD_JWT_SECRET"`
	TokenTTL        time.Duration `yaml:"-" toml:"-"`
	BcryptCost      int           `yaml:"bcrypt_cost" toml:"bcrypt_cost" env:"TASKD_BCRYPT_COST"`
	HashConcurrency int           `yaml:"hash_concurrency" toml:"hash_concurrency"`

	// Raw string value for file and env unmarshaling
	TokenTTLRaw string `yaml:"token_ttl" toml:"token_ttl" env:"TASKD_TOKEN_TTL"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"TASKD_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"TASKD_LOG_FORMAT"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded, then TASKD_*
// variables override file values. Duration strings are parsed into
// time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw file content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a Config from TASKD_* environment variables and defaults alone.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies env overrides and defaults, then parses and validates.
func finish(cfg *Config) error {
	if err := parseEnv(cfg); err != nil {
		return err
	}

	applyDefaults(cfg)

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
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

// parseEnv overrides fields tagged with env:"TASKD_*" when the variable is set.
// Unset variables leave file values untouched.
func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" && !cfg.Tailscale.Enabled {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Auth.TokenTTLRaw == "" {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	if cfg.Server.IdempotencyTTLRaw == "" {
		cfg.Server.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr is required (or enable tailscale)")
	}

	if c.Server.IdempotencyTTL <= 0 {
		return errors.New("server.idempotency_ttl must be positive")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return errors.New("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (set it in the config file or TASKD_JWT_SECRET)")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.HashConcurrency < 0 {
		return errors.New("auth.hash_concurrency must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Auth.TokenTTLRaw != "" {
		d, err := time.ParseDuration(cfg.Auth.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Auth.TokenTTLRaw, err)
		}
		cfg.Auth.TokenTTL = d
	}
	if cfg.Server.IdempotencyTTLRaw != "" {
		d, err := time.ParseDuration(cfg.Server.IdempotencyTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing idempotency_ttl %q: %w", cfg.Server.IdempotencyTTLRaw, err)
		}
		cfg.Server.IdempotencyTTL = d
	}
	return nil
}
