// Package metrics exposes Prometheus collectors for fetches and ledger sync.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiondeck_fetches_total",
		Help: "Completed endpoint fetches by outcome",
	}, []string{"endpoint", "outcome"}) // outcome=success|network|adapter

	fetchesCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiondeck_fetches_cancelled_total",
		Help: "In-flight requests cancelled by a newer request or an environment change",
	}, []string{"endpoint"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiondeck_cache_hits_total",
		Help: "Fetches answered from the cached value without a network call",
	}, []string{"endpoint"})

	environmentSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiondeck_environment_changes_total",
		Help: "Environment replacements applied to the API client",
	})

	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiondeck_sync_runs_total",
		Help: "Ledger sync runs by result",
	}, []string{"result"}) // result=diffed|skipped

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiondeck_ledger_uploads_total",
		Help: "Ledger uploads by outcome",
	}, []string{"outcome"}) // outcome=scheduled|succeeded|failed|cancelled
)

// RecordFetch counts a completed fetch.
func RecordFetch(endpoint, outcome string) {
	fetchesTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordCancel counts a superseded request.
func RecordCancel(endpoint string) {
	fetchesCancelled.WithLabelValues(endpoint).Inc()
}

// RecordCacheHit counts a load-if-needed fetch served from cache.
func RecordCacheHit(endpoint string) {
	cacheHits.WithLabelValues(endpoint).Inc()
}

// RecordEnvironmentChange counts an environment swap.
func RecordEnvironmentChange() {
	environmentSwaps.Inc()
}

// RecordSyncRun counts a sync run.
func RecordSyncRun(result string) {
	syncRuns.WithLabelValues(result).Inc()
}

// RecordUpload counts an upload lifecycle event.
func RecordUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
