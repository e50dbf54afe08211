// Package config provides configuration loading and validation for sigv4auth.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SIGV4AUTH_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with the SIGV4AUTH_ prefix:
//   - server.port → SIGV4AUTH_SERVER_PORT
//   - database.dsn → SIGV4AUTH_DATABASE_DSN
//   - keys.file → SIGV4AUTH_KEYS_FILE
//
// # Configuration Structure
//
//   - Server: port, request body limit, shutdown and key lookup timeouts
//   - Database: optional SQL access key table (sqlite or postgres)
//   - Keys: inline key pairs and an optional JSON or YAML keys file
//   - CORS: cross-origin settings for the HTTP API
//   - Metrics: Prometheus endpoint and OpenTelemetry span export (metrics.tracing)
//   - Log: level and output format
package config
