// Command sessiondeck shows a live dashboard of a conference schedule API and
// mirrors newly published sessions into a ledger.
//
// Without a subcommand it starts the terminal dashboard. The fetch, sync and
// env subcommands run once and exit, logging to stderr.
package main
