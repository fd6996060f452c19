// Package config provides configuration loading and validation for fsgate.
//
// The package handles YAML configuration files, .env files, environment
// variables, and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FSGATE_ prefix, plus API_KEY and DATA_DIR)
//  4. CLI flags
//
// A .env file is not a separate layer: LoadDotEnv copies its variables into
// the process environment before Load runs, without replacing variables
// that are already set.
//
// # Usage
//
//	if err := config.LoadDotEnv(); err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FSGATE_ prefix:
//   - server.port → FSGATE_SERVER_PORT
//   - storage.path → FSGATE_STORAGE_PATH or DATA_DIR
//   - auth.api_key → FSGATE_AUTH_API_KEY or API_KEY
//   - journal.type → FSGATE_JOURNAL_TYPE
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Log level must be debug, info, warn, or error
//   - Journal type must be sqlite or postgres
//   - Env must be dev or prod
//
// The API key is not required here; the serve command refuses to start
// without one.
package config
