package api

import (
	"context"
	"time"
)

// observer receives the terminal outcome of a request.
type observer func(value any, err error)

// cacheEntry is the per-endpoint cache slot. It is only touched on the
// dispatcher goroutine, with Client.mu held for the benefit of readers.
type cacheEntry struct {
	endpoint Endpoint

	value     any
	hasValue  bool
	lastErr   error
	updatedAt time.Time

	// gen identifies the newest request; results carrying an older gen are stale.
	gen       uint64
	cancel    context.CancelFunc
	requestID string

	owners    []string
	observers map[string]observer
}

func newCacheEntry(ep Endpoint) *cacheEntry {
	return &cacheEntry{endpoint: ep, observers: make(map[string]observer)}
}

// observe registers fn under owner, replacing any earlier callback for it.
func (e *cacheEntry) observe(owner string, fn observer) {
	if _, ok := e.observers[owner]; !ok {
		e.owners = append(e.owners, owner)
	}
	e.observers[owner] = fn
}

func (e *cacheEntry) forget(owner string) {
	if _, ok := e.observers[owner]; !ok {
		return
	}
	delete(e.observers, owner)
	for i, o := range e.owners {
		if o == owner {
			e.owners = append(e.owners[:i], e.owners[i+1:]...)
			break
		}
	}
}

// snapshotObservers returns observers in registration order.
func (e *cacheEntry) snapshotObservers() []observer {
	out := make([]observer, 0, len(e.owners))
	for _, owner := range e.owners {
		out = append(out, e.observers[owner])
	}
	return out
}

func (e *cacheEntry) inFlight() bool {
	return e.cancel != nil
}

// fresh reports whether the cached value can answer a load-if-needed fetch.
func (e *cacheEntry) fresh(now time.Time, maxAge time.Duration) bool {
	if !e.hasValue || e.lastErr != nil {
		return false
	}
	if maxAge > 0 && now.Sub(e.updatedAt) > maxAge {
		return false
	}
	return true
}

func (e *cacheEntry) record(value any, err error, now time.Time) {
	e.updatedAt = now
	e.lastErr = err
	if err == nil {
		e.value = value
		e.hasValue = true
	}
}

// stop cancels the in-flight request, if any, and reports whether there was one.
func (e *cacheEntry) stop() bool {
	if e.cancel == nil {
		return false
	}
	e.cancel()
	e.cancel = nil
	e.requestID = ""
	return true
}
