package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/ledger"
)

// EndpointStatus is the dashboard's view of one endpoint.
type EndpointStatus struct {
	Endpoint            api.Endpoint
	Items               int // entries in the last good payload
	HasValue            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Loading             bool // a request is in flight
}

// IsOffline reports whether the endpoint failed on consecutive polls.
func (s EndpointStatus) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Environment string
	Endpoints   []EndpointStatus // indexed by api.Endpoint
	News        []content.NewsItem
	Sync        ledger.Report
	HasSync     bool
}

// Status returns the entry for ep.
func (s Snapshot) Status(ep api.Endpoint) EndpointStatus {
	if int(ep) < 0 || int(ep) >= len(s.Endpoints) {
		return EndpointStatus{Endpoint: ep}
	}
	return s.Endpoints[ep]
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	env      string
	statuses []EndpointStatus
	news     []content.NewsItem
	sync     ledger.Report
	hasSync  bool
	now      func() time.Time
	loading  func(api.Endpoint) bool
}

// NewStore returns an empty store for env.
func NewStore(env string) *Store {
	s := &Store{now: time.Now}
	s.reset(env)
	return s
}

func (s *Store) reset(env string) {
	s.env = env
	s.statuses = make([]EndpointStatus, len(api.Endpoints()))
	for _, ep := range api.Endpoints() {
		s.statuses[ep] = EndpointStatus{Endpoint: ep}
	}
	s.news = nil
}

// SetEnvironment clears endpoint data collected under the previous
// environment. The last sync report is kept.
func (s *Store) SetEnvironment(env string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(env)
}

// Record stores the outcome of a fetch. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) Record(ep api.Endpoint, items int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(ep) < 0 || int(ep) >= len(s.statuses) {
		return
	}

	st := &s.statuses[ep]
	st.LastUpdated = s.now()
	if err != nil {
		st.LastError = err
		st.ConsecutiveFailures++
		return
	}
	st.Items = items
	st.HasValue = true
	st.LastError = nil
	st.ConsecutiveFailures = 0
}

// SetNews replaces the headline list.
func (s *Store) SetNews(items []content.NewsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = slices.Clone(items)
}

// SetSync stores the latest sync report.
func (s *Store) SetSync(r ledger.Report) {
	r.Pending = slices.Clone(r.Pending)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync = r
	s.hasSync = true
}

// SetLoadingSource registers fn to report in-flight requests. Snapshots
// query it after the store lock is released.
func (s *Store) SetLoadingSource(fn func(api.Endpoint) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = fn
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		Environment: s.env,
		Endpoints:   slices.Clone(s.statuses),
		News:        slices.Clone(s.news),
		Sync:        s.sync,
		HasSync:     s.hasSync,
	}
	snap.Sync.Pending = slices.Clone(s.sync.Pending)
	loading := s.loading
	s.mu.RUnlock()

	if loading != nil {
		for i := range snap.Endpoints {
			snap.Endpoints[i].Loading = loading(snap.Endpoints[i].Endpoint)
		}
	}
	return snap
}
