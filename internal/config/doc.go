// Package config handles configuration loading for taskd.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion, then TASKD_* environment variables override individual values.
// The package fills defaults and validates before returning.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TASKD_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/taskd/config.yaml
//  3. ~/.config/taskd/config.yaml
//
// A path ending in .toml is decoded as TOML; anything else as YAML. When no
// file exists, FromEnv builds the configuration from the environment alone.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TASKD_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Environment Overrides
//
// These variables replace the corresponding file value when set:
//
//	TASKD_HTTP_ADDR         server.http_addr
//	TASKD_IDEMPOTENCY_TTL   server.idempotency_ttl
//	TASKD_DB_PATH           database.path
//	TASKD_JWT_SECRET        auth.jwt_secret
//	TASKD_TOKEN_TTL         auth.token_ttl
//	TASKD_BCRYPT_COST       auth.bcrypt_cost
//	TASKD_LOG_LEVEL         logging.level
//	TASKD_LOG_FORMAT        logging.format
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "24h"
//
// # Example Configuration
//
//	server:
//	  http_addr: "localhost:8080"
//	  cors_origins:
//	    - "http://localhost:5173"
//	  idempotency_ttl: "24h"
//
//	database:
//	  path: "/var/lib/taskd/taskd.db"
//
//	auth:
//	  jwt_secret: "${TASKD_JWT_SECRET}"
//	  token_ttl: "24h"
//	  bcrypt_cost: 10
//
//	logging:
//	  level: "info"
//	  format: "text"
//
// # Validation
//
// The JWT secret is required and must be at least 32 bytes. There is no
// built-in fallback secret.
package config
