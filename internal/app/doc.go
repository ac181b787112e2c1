// Package app is the composition root for sessiondeck.
//
// # Overview
//
// This package wires configuration, the API client, the ledger syncer, the
// poller, the shared state.Store and the dashboard into one process. It also
// provides FetchOnce and SyncOnce for the headless CLI commands.
//
// # Startup
//
//  1. cmd/sessiondeck loads config.toml (defaults when missing)
//  2. Run points zerolog at the configured log file
//  3. New picks the environment: --env, then the remembered prefs value, then config
//  4. New builds the api.Loop and api.Client for that environment
//  5. When a ledger URL is configured, New builds a ledger.Syncer and hooks it to contents
//  6. serve runs every long-lived piece under one errgroup
//
// # Components
//
//   - app.go: App, environment switching, config reload and serve
//   - poller.go: periodic fetch of every endpoint into the store
//   - watch.go: fsnotify watcher for the config file
//   - oneshot.go: FetchOnce and SyncOnce for the CLI
//
// # Goroutines
//
//	┌───────────────────────────── errgroup ─────────────────────────────┐
//	│ loop.Run        dispatcher for cache updates and observers        │
//	│ poller.Run      Refresh now, then every poll interval             │
//	│ watchFile       debounced config reload                           │
//	│ serveMetrics    /metrics via promhttp (only with metrics_addr)    │
//	│ ui.Run          Bubble Tea dashboard; returning cancels the group │
//	└────────────────────────────────────────────────────────────────────┘
//
// The dashboard is the only member that ends on its own. When it returns,
// serve cancels the group context and waits for the rest to stop.
//
// # Environment Changes
//
// SwitchEnvironment is the single path for changing environments. It is used
// by the dashboard's e key, by Reload (the current environment again, which
// drops every cached value), and by config reloads that change the selected
// environment or its definition. A switch:
//
//	client.SetEnvironment(env)   cancel requests, clear cache and observers
//	loop.Dispatch(store reset)   queued behind the swap
//	poller.Refresh()             first fetches against the new environment
//	prefs.Save(...)              remember the choice for the next start
//
// # Ledger Sync
//
// The syncer is triggered by the client's contents hook, which fires only
// for completed network fetches of contents. Its reports reach the store
// through ledger.WithReportHook. A ledger that cannot be read skips the run
// and leaves the contents fetch and its observers untouched.
//
// # Config Reload
//
// The watcher observes the config file's directory and calls reloadConfig
// 500ms after the last write, create or rename of the file. A file that no
// longer parses is logged and ignored; the previous configuration stays.
//
// # Error Handling
//
// Fetch errors are recorded in the store and logged; they never stop the
// poller. Errors from the loop, the watcher or the metrics server end the
// errgroup and are returned from Run.
package app
