package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementCounters(t *testing.T) {
	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("news", "success"))
	RecordFetch("news", "success")
	if got := testutil.ToFloat64(fetchesTotal.WithLabelValues("news", "success")); got != before+1 {
		t.Fatalf("fetches = %v, want %v", got, before+1)
	}

	beforeUploads := testutil.ToFloat64(uploadsTotal.WithLabelValues("failed"))
	RecordUpload("failed")
	RecordUpload("failed")
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("failed")); got != beforeUploads+2 {
		t.Fatalf("uploads = %v, want %v", got, beforeUploads+2)
	}

	beforeSwaps := testutil.ToFloat64(environmentSwaps)
	RecordEnvironmentChange()
	if got := testutil.ToFloat64(environmentSwaps); got != beforeSwaps+1 {
		t.Fatalf("environment changes = %v, want %v", got, beforeSwaps+1)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordCacheHit("contents")
	RecordCancel("live")
	RecordSyncRun("skipped")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, name := range []string{
		"sessiondeck_cache_hits_total",
		"sessiondeck_fetches_cancelled_total",
		"sessiondeck_sync_runs_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
