// Package config loads sessiondeck's TOML configuration.
//
// # Location
//
// The default location is ~/.config/sessiondeck/config.toml; --config
// overrides it. A missing file is not an error: Load returns Default(),
// which points a single "production" environment at a local API on
// http://127.0.0.1:7480 and leaves ledger sync disabled.
//
// # Example
//
//	environment = "staging"
//	poll_seconds = 60
//	cache_max_age_seconds = 300
//	log_level = "debug"
//	log_file = "~/.local/share/sessiondeck/sessiondeck.log"
//	metrics_addr = "127.0.0.1:9464"
//
//	[environments.production]
//	base_url = "https://api.example.com/v1"
//
//	[environments.staging]
//	base_url = "https://staging.example.com"
//	live = "/live.json"
//
//	[ledger]
//	url = "https://ledger.example.com/sessions"
//	events = ["wwdc2017"]
//	stagger_seconds = 3
//
// # Environments
//
// Each [environments.<name>] table needs a base_url. The endpoint keys news,
// featured, contents, videos and live override the path of one endpoint;
// empty ones fall back to api.DefaultPaths. Every environment is validated
// through api.NewEnvironment when the file loads, so a bad URL is reported
// at startup instead of on the first fetch.
//
// Selection rules:
//   - environment names the active one and must be defined
//   - when environment is empty and "production" is not defined, the first
//     name in sorted order is used
//   - NextEnvironment cycles through the sorted names and wraps around
//
// # Defaults
//
//   - poll_seconds: 30
//   - cache_max_age_seconds: 300; 0 keeps cached values until the environment changes
//   - log_level: info
//   - ledger.events: wwdc2017
//   - ledger.stagger_seconds: 3; negative values are rejected
//
// Tilde expansion applies to the config path and log_file. String values are
// trimmed of surrounding whitespace.
package config
