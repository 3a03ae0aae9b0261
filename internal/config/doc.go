// Package config provides centralized configuration management for the
// converter. It loads configuration from multiple sources, validates it, and
// resolves the file system paths the tool works with.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TALLY_* for namespacing:
//
//	TALLY_LOGGING_LEVEL=debug
//	TALLY_LOGGING_OUTPUT=file
//	TALLY_PATHS_REFERENCE_FILE=/srv/reference_headers.xlsx
//	TALLY_CONVERSION_STRICT_EXTRA=true
//
// # Path Management
//
// Relative configured paths are resolved against the executable directory,
// never the current working directory:
//
//	paths, err := cfg.ResolvePaths()
//	logPath := paths.GetLogPath("converter.log")
//
// # Usage
//
// Load configuration at startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
