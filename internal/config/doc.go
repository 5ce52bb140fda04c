// Package config handles configuration loading for expense-tracker.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion, then individual fields can be overridden through
// EXPENSE_TRACKER_* environment variables. The package provides validation
// and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  access_secret: "${EXPENSE_TRACKER_ACCESS_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Environment Overrides
//
// Every field also has a dedicated override variable, applied after the
// file is parsed:
//
//	EXPENSE_TRACKER_HTTP_ADDR=:9090 expense-tracker serve
//
// # Duration Parsing
//
// Token lifetimes use Go's time.ParseDuration syntax:
//
//	auth:
//	  access_ttl: "30s"
//	  refresh_ttl: "24h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  cors_origin: "http://localhost:5173"   # optional, enables CORS
//
// Database:
//
//	database:
//	  path: "/var/lib/expense-tracker/expense.db"   # or ":memory:"
//
// Authentication:
//
//	auth:
//	  access_secret: "${EXPENSE_TRACKER_ACCESS_SECRET}"
//	  refresh_secret: "${EXPENSE_TRACKER_REFRESH_SECRET}"
//	  access_ttl: "30s"
//	  refresh_ttl: "24h"
//
// Refresh cookie attributes:
//
//	cookie:
//	  secure: false      # set true behind HTTPS
//	  same_site: "lax"   # lax, strict, none
//
// Category catalog:
//
//	categories:
//	  path: "./categories.toml"   # optional, built-in catalog when omitted
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server address and database path presence
//   - Both signing secrets present
//   - TTLs positive, access_ttl not exceeding refresh_ttl
//   - same_site one of lax, strict, none
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
