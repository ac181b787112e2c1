package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/config"
	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/ledger"
	"github.com/five82/sessiondeck/internal/prefs"
)

const contentsPayload = `{
  "events": [{"id":"wwdc2017","name":"WWDC 2017"}],
  "tracks": [{"id":1,"name":"Featured"}],
  "rooms": [],
  "contents": [
    {"id":"wwdc2017-101","eventId":"wwdc2017","title":"Keynote","track":1},
    {"id":"wwdc2017-102","eventId":"wwdc2017","title":"Platforms State of the Union","track":1},
    {"id":"wwdc2014-201","eventId":"wwdc2014","title":"Old session"},
    {"id":"wwdc2016-402","eventId":"wwdc2016","title":"What's New in Swift"}
  ]
}`

// scheduleServer serves every endpoint under its default path. The news
// title carries name so tests can tell environments apart.
func scheduleServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	payloads := map[string]string{
		api.DefaultPaths[api.News]:             fmt.Sprintf(`{"items":[{"id":"n1","title":%q}]}`, name),
		api.DefaultPaths[api.FeaturedSections]: `{"sections":[]}`,
		api.DefaultPaths[api.Contents]:         contentsPayload,
		api.DefaultPaths[api.Videos]:           `{"sessions":[]}`,
		api.DefaultPaths[api.LiveVideoAssets]:  `{}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ledgerServer keeps rows in memory and accepts single-row POSTs.
type ledgerServer struct {
	mu   sync.Mutex
	rows []ledger.SessionRecord
}

func (l *ledgerServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(l.rows)
	case http.MethodPost:
		var batch []ledger.SessionRecord
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		l.rows = append(l.rows, batch...)
		w.WriteHeader(http.StatusCreated)
	}
}

func (l *ledgerServer) identifiers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.Identifier
	}
	return out
}

func testConfig(envs map[string]string, current string) config.Config {
	cfg := config.Default()
	cfg.Environment = current
	cfg.Environments = make(map[string]config.EnvironmentConfig, len(envs))
	for name, base := range envs {
		cfg.Environments[name] = config.EnvironmentConfig{BaseURL: base}
	}
	cfg.Ledger.Stagger = 0
	return cfg
}

func eventually(what string, cond func() bool) error {
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func TestFetchOnce_DecodesEndpoint(t *testing.T) {
	srv := scheduleServer(t, "alpha")
	cfg := testConfig(map[string]string{"alpha": srv.URL}, "alpha")

	value, err := FetchOnce(context.Background(), cfg, "", api.News)
	if err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}
	items, ok := value.([]content.NewsItem)
	if !ok || len(items) != 1 || items[0].Title != "alpha" {
		t.Fatalf("value = %#v", value)
	}
}

func TestFetchOnce_UnknownEnvironment(t *testing.T) {
	cfg := testConfig(map[string]string{"alpha": "http://127.0.0.1:1"}, "alpha")
	if _, err := FetchOnce(context.Background(), cfg, "beta", api.News); err == nil {
		t.Fatal("expected error for undefined environment")
	}
}

func TestSyncOnce_UploadsNewSessions(t *testing.T) {
	srv := scheduleServer(t, "alpha")
	led := &ledgerServer{rows: []ledger.SessionRecord{{Identifier: "wwdc2017-101"}}}
	ledgerSrv := httptest.NewServer(led)
	t.Cleanup(ledgerSrv.Close)

	cfg := testConfig(map[string]string{"alpha": srv.URL}, "alpha")
	cfg.Ledger.URL = ledgerSrv.URL

	report, err := SyncOnce(context.Background(), cfg, "")
	if err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}
	if report.Stage != ledger.StageDone || report.Uploaded != 2 || report.Ledger != 1 || report.Candidates != 3 {
		t.Fatalf("report = %+v", report)
	}
	got := led.identifiers()
	want := []string{"wwdc2017-101", "wwdc2017-102", "wwdc2016-402"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("ledger rows = %v, want %v", got, want)
	}
}

func TestSyncOnce_RequiresLedger(t *testing.T) {
	cfg := testConfig(map[string]string{"alpha": "http://127.0.0.1:1"}, "alpha")
	if _, err := SyncOnce(context.Background(), cfg, ""); err == nil {
		t.Fatal("expected error without ledger url")
	}
}

func TestNew_EnvironmentSelection(t *testing.T) {
	cfg := testConfig(map[string]string{"alpha": "http://alpha.test", "beta": "http://beta.test"}, "alpha")
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")

	a, err := New(cfg, Options{PrefsPath: prefsPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Close()
	if a.env != "alpha" {
		t.Fatalf("env = %q, want configured alpha", a.env)
	}

	if err := prefs.Save(prefsPath, prefs.Prefs{Theme: "Slate", Environment: "beta"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	a, err = New(cfg, Options{PrefsPath: prefsPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Close()
	if a.env != "beta" {
		t.Fatalf("env = %q, want remembered beta", a.env)
	}

	a, err = New(cfg, Options{PrefsPath: prefsPath, Environment: "alpha"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Close()
	if a.env != "alpha" {
		t.Fatalf("env = %q, want explicit alpha", a.env)
	}

	if _, err := New(cfg, Options{PrefsPath: prefsPath, Environment: "gamma"}); err == nil {
		t.Fatal("expected error for undefined environment")
	}
}

func TestApplyConfigSwitchesOnlyWhenEnvironmentChanges(t *testing.T) {
	cfg := testConfig(map[string]string{"alpha": "http://alpha.test", "beta": "http://beta.test"}, "alpha")
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	a, err := New(cfg, Options{PrefsPath: prefsPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	a.applyConfig(cfg)
	if a.env != "alpha" {
		t.Fatalf("env = %q after identical reload", a.env)
	}
	if got := prefs.Load(prefsPath).Environment; got != "" {
		t.Fatalf("identical reload should not persist a switch, got %q", got)
	}

	moved := testConfig(map[string]string{"alpha": "http://alpha2.test", "beta": "http://beta.test"}, "alpha")
	a.applyConfig(moved)
	if got := prefs.Load(prefsPath).Environment; got != "alpha" {
		t.Fatalf("redefined environment should be reapplied, prefs env = %q", got)
	}

	selected := testConfig(map[string]string{"alpha": "http://alpha2.test", "beta": "http://beta.test"}, "beta")
	a.applyConfig(selected)
	if a.env != "beta" {
		t.Fatalf("env = %q, want beta", a.env)
	}

	removed := testConfig(map[string]string{"alpha": "http://alpha2.test"}, "alpha")
	a.applyConfig(removed)
	if a.env != "alpha" {
		t.Fatalf("env = %q, want fallback to alpha", a.env)
	}
}

func TestServePollsSwitchesAndSyncs(t *testing.T) {
	alpha := scheduleServer(t, "alpha")
	beta := scheduleServer(t, "beta")
	led := &ledgerServer{}
	ledgerSrv := httptest.NewServer(led)
	t.Cleanup(ledgerSrv.Close)

	cfg := testConfig(map[string]string{"alpha": alpha.URL, "beta": beta.URL}, "alpha")
	cfg.Ledger.URL = ledgerSrv.URL
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")

	a, err := New(cfg, Options{PrefsPath: prefsPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	newsTitle := func() string {
		snap := a.Store().Snapshot()
		if len(snap.News) == 0 {
			return ""
		}
		return snap.News[0].Title
	}

	err = a.serve(context.Background(), func(ctx context.Context) error {
		if err := eventually("alpha news", func() bool { return newsTitle() == "alpha" }); err != nil {
			return err
		}
		if err := eventually("contents", func() bool { return a.Store().Snapshot().Status(api.Contents).Items == 4 }); err != nil {
			return err
		}
		if err := eventually("sync run", func() bool {
			snap := a.Store().Snapshot()
			return snap.HasSync && snap.Sync.Stage == ledger.StageDone && snap.Sync.Uploaded == 3
		}); err != nil {
			return err
		}

		next, err := a.NextEnvironment()
		if err != nil || next != "beta" {
			return fmt.Errorf("NextEnvironment = %q, %v", next, err)
		}
		if err := eventually("beta news", func() bool { return newsTitle() == "beta" }); err != nil {
			return err
		}
		if env := a.Store().Snapshot().Environment; env != "beta" {
			return fmt.Errorf("store environment = %q", env)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}

	if got := prefs.Load(prefsPath).Environment; got != "beta" {
		t.Fatalf("remembered environment = %q, want beta", got)
	}
	if got := len(led.identifiers()); got != 3 {
		t.Fatalf("ledger rows = %d, want 3", got)
	}
}

// brokenLedger fails every read and counts the requests it sees.
type brokenLedger struct {
	mu    sync.Mutex
	gets  int
	posts int
}

func (b *brokenLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		b.gets++
		http.Error(w, "ledger down", http.StatusInternalServerError)
	case http.MethodPost:
		b.posts++
		w.WriteHeader(http.StatusCreated)
	}
}

func (b *brokenLedger) counts() (gets, posts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets, b.posts
}

func TestServeLedgerReadFailureLeavesContentsIntact(t *testing.T) {
	srv := scheduleServer(t, "alpha")
	led := &brokenLedger{}
	ledgerSrv := httptest.NewServer(led)
	t.Cleanup(ledgerSrv.Close)

	cfg := testConfig(map[string]string{"alpha": srv.URL}, "alpha")
	cfg.Ledger.URL = ledgerSrv.URL
	a, err := New(cfg, Options{PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	err = a.serve(context.Background(), func(ctx context.Context) error {
		if err := eventually("skipped sync", func() bool {
			snap := a.Store().Snapshot()
			return snap.HasSync && snap.Sync.Stage == ledger.StageSkipped
		}); err != nil {
			return err
		}
		st := a.Store().Snapshot().Status(api.Contents)
		if !st.HasValue || st.Items != 4 || st.LastError != nil {
			return fmt.Errorf("contents status = %+v, want a clean success", st)
		}
		if snap := a.Store().Snapshot(); snap.Sync.Err == nil {
			return fmt.Errorf("skipped report carries no error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}

	gets, posts := led.counts()
	if gets == 0 {
		t.Fatalf("ledger was never read")
	}
	if posts != 0 {
		t.Fatalf("ledger saw %d uploads after a failed read, want 0", posts)
	}
}
