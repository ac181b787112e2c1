package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/ledger"
)

func fixedStore(env string, at time.Time) *Store {
	s := NewStore(env)
	s.now = func() time.Time { return at }
	return s
}

func TestStore_RecordSuccess(t *testing.T) {
	at := time.Date(2017, 6, 5, 17, 0, 0, 0, time.UTC)
	s := fixedStore("production", at)

	s.Record(api.Contents, 42, nil)

	snap := s.Snapshot()
	if snap.Environment != "production" {
		t.Fatalf("Environment = %q", snap.Environment)
	}
	st := snap.Status(api.Contents)
	if !st.HasValue || st.Items != 42 || !st.LastUpdated.Equal(at) || st.LastError != nil {
		t.Fatalf("status = %+v", st)
	}
	if other := snap.Status(api.News); other.HasValue {
		t.Fatalf("news status should be untouched: %+v", other)
	}
}

func TestStore_RecordErrorKeepsPreviousData(t *testing.T) {
	s := fixedStore("production", time.Now())
	s.Record(api.Videos, 3, nil)

	boom := errors.New("boom")
	s.Record(api.Videos, 0, boom)

	st := s.Snapshot().Status(api.Videos)
	if st.Items != 3 || !st.HasValue {
		t.Fatalf("data changed on error: %+v", st)
	}
	if !errors.Is(st.LastError, boom) {
		t.Fatalf("LastError = %v, want boom", st.LastError)
	}
	if st.ConsecutiveFailures != 1 || st.IsOffline() {
		t.Fatalf("failures = %d offline = %v", st.ConsecutiveFailures, st.IsOffline())
	}

	s.Record(api.Videos, 0, boom)
	if st := s.Snapshot().Status(api.Videos); !st.IsOffline() {
		t.Fatalf("expected offline after two failures: %+v", st)
	}

	s.Record(api.Videos, 5, nil)
	if st := s.Snapshot().Status(api.Videos); st.ConsecutiveFailures != 0 || st.LastError != nil || st.Items != 5 {
		t.Fatalf("success should reset failures: %+v", st)
	}
}

func TestStore_SetEnvironmentResetsEndpoints(t *testing.T) {
	s := NewStore("production")
	s.Record(api.News, 2, nil)
	s.SetNews([]content.NewsItem{{ID: "n1"}})
	s.SetSync(ledger.Report{RunID: "run-1"})

	s.SetEnvironment("staging")

	snap := s.Snapshot()
	if snap.Environment != "staging" {
		t.Fatalf("Environment = %q", snap.Environment)
	}
	if snap.Status(api.News).HasValue || len(snap.News) != 0 {
		t.Fatalf("endpoint data survived environment change: %+v", snap)
	}
	if !snap.HasSync || snap.Sync.RunID != "run-1" {
		t.Fatalf("sync report should survive: %+v", snap.Sync)
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := NewStore("production")
	s.SetNews([]content.NewsItem{{ID: "n1"}})
	s.SetSync(ledger.Report{Pending: []string{"a"}})

	snap := s.Snapshot()
	snap.News[0].ID = "changed"
	snap.Sync.Pending[0] = "changed"
	snap.Endpoints[api.News].Items = 99

	again := s.Snapshot()
	if again.News[0].ID != "n1" || again.Sync.Pending[0] != "a" || again.Endpoints[api.News].Items != 0 {
		t.Fatalf("Snapshot should clone: %+v", again)
	}
}

func TestSnapshot_StatusOutOfRange(t *testing.T) {
	var snap Snapshot
	if st := snap.Status(api.News); st.Endpoint != api.News || st.HasValue {
		t.Fatalf("Status on empty snapshot = %+v", st)
	}
}

func TestStore_SnapshotReportsInFlightRequests(t *testing.T) {
	s := NewStore("production")
	if st := s.Snapshot().Status(api.News); st.Loading {
		t.Fatalf("Loading = true without a source")
	}

	inFlight := map[api.Endpoint]bool{api.Contents: true}
	s.SetLoadingSource(func(ep api.Endpoint) bool { return inFlight[ep] })

	snap := s.Snapshot()
	if !snap.Status(api.Contents).Loading {
		t.Fatalf("contents should be loading")
	}
	if snap.Status(api.News).Loading {
		t.Fatalf("news should not be loading")
	}
}
