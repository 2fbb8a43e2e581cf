// Package config handles configuration loading for linkdeck.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; a deployment with no
// config file at all is driven entirely by LINKDECK_* environment variables.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LINKDECK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/linkdeck/linkdeck.yaml
//  3. ~/.config/linkdeck/linkdeck.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	access:
//	  edit_secret: "${LINKDECK_EDIT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to empty strings.
//
// # Environment Overrides
//
// After the file is parsed, LINKDECK_EDIT_SECRET and LINKDECK_VIEW_SECRET
// from the environment override the file values, so secrets never have to
// be written to disk.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Link store backend (sqlite, redis, or memory):
//
//	store:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "/var/lib/linkdeck/linkdeck.db"
//	  redis:
//	    url: "redis://localhost:6379/0"
//
// Access tiers (an empty secret leaves that tier open):
//
//	access:
//	  edit_secret: "${LINKDECK_EDIT_SECRET}"
//	  view_secret: ""
//	  edit_session_hours: 168
//	  view_session_hours: 1
//
// Editing limits:
//
//	links:
//	  max_count: 50
//
// Site presentation:
//
//	site:
//	  title: "My Links"
//	  intro: "A few *hand-picked* links."  # Markdown
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
//   - Backend name and its required settings (sqlite path, redis URL)
//   - Positive session lifetimes
//   - Positive link count limit
//
// # Usage
//
// Load configuration from a specific path:
//
//	cfg, err := config.Load("/etc/linkdeck/linkdeck.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or from the environment alone:
//
//	cfg, err := config.FromEnv()
package config
