// Package ledger keeps an external ledger of session records in step with the
// schedule.
//
// # Run Lifecycle
//
// Each successful contents fetch triggers a run:
//
//	Idle -> LedgerFetched -> Diffed -> Uploading(k/n) -> Done
//	  \
//	   `-> Skipped (ledger read failed)
//
// The run reads the whole ledger, projects the sessions of allowed events into
// SessionRecords, keeps those whose identifier the ledger lacks and schedules
// one POST per record, the i-th after i*stagger. A ledger read failure skips
// the run; it never deletes or rewrites rows.
//
// # Outcomes
//
// Every scheduled upload settles exactly once:
//   - Uploaded: the ledger accepted the row
//   - Failed: the POST returned an error or a status of 400 and above
//   - Cancelled: the run was superseded or the syncer closed, before or during the POST
//
// Outcomes are counted in the Report and in the sessiondeck_ledger_uploads_total
// metric but never retried. A failed row is simply absent from the ledger, so
// the next run schedules it again.
//
// # Overlapping Runs
//
// Trigger cancels the pending uploads of the previous run before starting a
// new one. Reports from a superseded run are not published: Last and the
// report hook only ever move forward to newer runs.
//
// # Store
//
// Client implements Store over HTTP: List is a GET returning a JSON array of
// rows and Append POSTs a single-element array. Tests substitute their own
// Store and Scheduler.
package ledger
