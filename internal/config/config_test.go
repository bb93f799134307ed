// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, env overrides, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:9090"
  cors_origins:
    - "http://localhost:5173"

database:
  path: "./test.db"

auth:
  jwt_secret: "`+testSecret+`"
  token_ttl: "2h"
  bcrypt_cost: 12
  hash_concurrency: 4

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "./test.db", cfg.Database.Path)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 4, cfg.Auth.HashConcurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  jwt_secret: "`+testSecret+`"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
	assert.Equal(t, DefaultIdempotencyTTL, cfg.Server.IdempotencyTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.Equal(t, 0, cfg.Auth.HashConcurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[server]
http_addr = "127.0.0.1:7070"
cors_origins = ["*"]

[database]
path = "tasks.db"

[auth]
jwt_secret = "`+testSecret+`"
token_ttl = "30m"

[logging]
level = "warn"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7070", cfg.Server.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "tasks.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_TASKD_SECRET", testSecret)
	t.Setenv("TEST_TASKD_DB", "/tmp/from-env.db")

	configPath := writeConfig(t, "config.yaml", `
database:
  path: "${TEST_TASKD_DB}"
auth:
  jwt_secret: "${TEST_TASKD_SECRET}"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TASKD_HTTP_ADDR", "0.0.0.0:1234")
	t.Setenv("TASKD_DB_PATH", "/var/lib/taskd/tasks.db")
	t.Setenv("TASKD_JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("TASKD_TOKEN_TTL", "15m")
	t.Setenv("TASKD_IDEMPOTENCY_TTL", "1h")
	t.Setenv("TASKD_BCRYPT_COST", "4")
	t.Setenv("TASKD_LOG_LEVEL", "error")
	t.Setenv("TASKD_LOG_FORMAT", "json")

	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "localhost:8080"
database:
  path: "./file.db"
auth:
  jwt_secret: "`+testSecret+`"
  token_ttl: "24h"
  bcrypt_cost: 10
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:1234", cfg.Server.HTTPAddr)
	assert.Equal(t, "/var/lib/taskd/tasks.db", cfg.Database.Path)
	assert.Equal(t, strings.Repeat("s", 40), cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Server.IdempotencyTTL)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TASKD_DB_PATH", ":memory:")
	t.Setenv("TASKD_JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "server: [unclosed")
	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  jwt_secret: "`+testSecret+`"
  token_ttl: "forever"
`)
	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_ttl")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{HTTPAddr: "localhost:8080", IdempotencyTTL: time.Hour},
			Database: DatabaseConfig{Path: "./test.db"},
			Auth: AuthConfig{
				JWTSecret:  testSecret,
				TokenTTL:   time.Hour,
				BcryptCost: bcrypt.MinCost,
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "missing http addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, wantErr: "server.http_addr"},
		{name: "zero idempotency ttl", mutate: func(c *Config) { c.Server.IdempotencyTTL = 0 }, wantErr: "idempotency_ttl"},
		{name: "tailscale without hostname", mutate: func(c *Config) { c.Tailscale.Enabled = true }, wantErr: "tailscale.hostname"},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret is required"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "at least 32 bytes"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: "token_ttl"},
		{name: "cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 1 }, wantErr: "bcrypt_cost"},
		{name: "cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 99 }, wantErr: "bcrypt_cost"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Auth.HashConcurrency = -1 }, wantErr: "hash_concurrency"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "logging.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_TailscaleWithoutHTTPAddr(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
tailscale:
  enabled: true
  hostname: "taskd"
database:
  path: "./test.db"
auth:
  jwt_secret: "`+testSecret+`"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.HTTPAddr)
	assert.True(t, cfg.Tailscale.Enabled)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TASKD_TEST_VAR", "value")

	assert.Equal(t, "a value b", expandEnvVars("a ${TASKD_TEST_VAR} b"))
	assert.Equal(t, "a  b", expandEnvVars("a ${TASKD_TEST_UNSET_VAR} b"))
	assert.Equal(t, "no vars", expandEnvVars("no vars"))
}
