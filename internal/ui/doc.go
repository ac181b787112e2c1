// Package ui renders the sessiondeck dashboard with Bubble Tea.
//
// # Overview
//
// The model never touches the API client directly. It re-reads a
// state.Store snapshot on every tick and forwards key presses to a
// Controller, which the app package implements.
//
// # Layout
//
//	┌ header: sessiondeck  env production  updated 15:04:05 ────────┐
//	├ Endpoints ────────────────────────────────────────────────────┤
//	│ ENDPOINT   STATE     ITEMS  AGE       LAST ERROR              │
//	│ news       ok            3  12s                               │
//	│ contents   loading     142  12s                               │
//	├ Ledger sync ──────────────────────────────────────────────────┤
//	│ uploading  ledger 140  candidates 145  scheduled 5            │
//	│ uploaded 2  failed 0  cancelled 0                             │
//	├ News ─────────────────────────────────────────────────────────┤
//	│ viewport over the current headlines                           │
//	├ Activity ─────────────────────────────────────────────────────┤
//	│ the newest warnings from the log file                         │
//	└ footer: key help ─────────────────────────────────────────────┘
//
// # Endpoint States
//
//   - pending: nothing fetched yet
//   - loading: a request is in flight
//   - ok: the last fetch succeeded
//   - error: the last fetch failed; the previous counts stay visible
//   - offline: two or more consecutive failures
//
// # Keys
//
//   - r: ask for a poll round
//   - R: reload, dropping cached values
//   - e: switch to the next configured environment
//   - T: cycle the color theme (saved to prefs)
//   - ?: toggle the full help
//   - q, ctrl+c: quit
//
// Controller calls that may block, such as an environment switch, run as
// tea.Cmds so the update loop stays responsive. A failed switch is shown in
// the footer until the next action replaces the message.
//
// # Themes
//
// Nightfox, Kanagawa and Slate are built in. Each theme maps endpoint states
// and sync stages to badge colors through StatusColors; unknown states use
// the muted color.
//
// # Activity Panel
//
// The dashboard owns the terminal, so warnings go to the log file. Each tick
// reads the newest warning entries back through logtail and shows them in
// the activity panel.
package ui
