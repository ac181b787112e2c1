// Package state holds the data shared between the poller and the dashboard.
//
// # Overview
//
// The Store is the meeting point of three producers and one consumer. The
// poller records the outcome of every endpoint fetch, the ledger syncer
// publishes its run reports through a hook, and the app resets the store when
// the environment changes. The dashboard reads a Snapshot on every tick and
// never talks to the API client itself.
//
// # Architecture
//
//	Producers:                             Consumer (UI):
//	┌──────────────────────────┐          ┌──────────────────┐
//	│ Poller observers         │          │                  │
//	│   store.Record(ep, n, e) │          │                  │
//	│   store.SetNews(items)   │─────────→│ store.Snapshot() │
//	│ Syncer report hook       │ (RWMutex)│       ↓          │
//	│   store.SetSync(report)  │          │   render panels  │
//	│ App environment switch   │          │                  │
//	│   store.SetEnvironment() │          │                  │
//	└──────────────────────────┘          └──────────────────┘
//
// Poller observers run on the api dispatcher goroutine; the sync hook runs
// on syncer goroutines. The mutex makes both safe without coordinating the
// two.
//
// # Core Types
//
// EndpointStatus:
//   - Items counted in the last good payload
//   - HasValue once any fetch has succeeded
//   - LastError and ConsecutiveFailures for the most recent failures
//   - Loading while a request is in flight
//
// Snapshot:
//   - Environment name the data belongs to
//   - One EndpointStatus per api.Endpoint, indexed by the endpoint
//   - The latest news headlines
//   - The latest ledger.Report and HasSync
//
// # Record Semantics
//
//	// Success: replace counts and clear the error
//	store.Record(api.Contents, 42, nil)
//	→ Items = 42, HasValue = true
//	→ LastError = nil, ConsecutiveFailures = 0
//	→ LastUpdated = now
//
//	// Failure: keep counts, record the error
//	store.Record(api.Contents, 0, err)
//	→ Items = <unchanged>, HasValue = <unchanged>
//	→ LastError = err, ConsecutiveFailures++
//	→ LastUpdated = now
//
// An endpoint with two or more consecutive failures reports IsOffline, which
// the dashboard shows as "offline" rather than "error".
//
// # Environment Changes
//
// SetEnvironment drops endpoint statuses and news gathered under the previous
// environment. The sync report survives because the ledger does not belong
// to an environment. The app dispatches the reset onto the api loop after the
// client swap so that results already queued for the old environment land
// before the reset, never after it.
//
// # In-flight Requests
//
// SetLoadingSource registers a func, normally api.Client.Loading, that
// Snapshot consults for every endpoint. It is called after the store lock is
// released, so the client and the store never hold each other's locks.
//
// # Copies
//
// Snapshot clones the status slice, the news slice and the report's pending
// identifiers. Callers may keep or modify a snapshot freely.
//
// # Usage Example
//
//	store := state.NewStore("production")
//	store.SetLoadingSource(client.Loading)
//
//	// Observer on the dispatcher goroutine:
//	client.FetchNews("poller", func(items []content.NewsItem, err error) {
//		store.Record(api.News, len(items), err)
//		if err == nil {
//			store.SetNews(items)
//		}
//	})
//
//	// UI tick:
//	snap := store.Snapshot()
//	for _, ep := range api.Endpoints() {
//		render(snap.Status(ep))
//	}
package state
