package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/config"
	"github.com/five82/sessiondeck/internal/ledger"
	"github.com/five82/sessiondeck/internal/logging"
	"github.com/five82/sessiondeck/internal/metrics"
	"github.com/five82/sessiondeck/internal/prefs"
	"github.com/five82/sessiondeck/internal/state"
	"github.com/five82/sessiondeck/internal/ui"
)

// Options configure the sessiondeck application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses ~/.config/sessiondeck/prefs.toml
	PollEvery   int    // seconds; zero uses the config value
	Environment string // overrides the remembered environment
}

// App wires the API client, sync pipeline, poller and store together.
type App struct {
	loop   *api.Loop
	client *api.Client
	syncer *ledger.Syncer // nil when no ledger is configured
	store  *state.Store
	poller *Poller
	log    zerolog.Logger

	prefsPath string

	mu    sync.Mutex
	cfg   config.Config
	env   string
	prefs prefs.Prefs
}

// New builds an App from cfg. Nothing runs until Run.
func New(cfg config.Config, opts Options) (*App, error) {
	userPrefs := prefs.Load(opts.PrefsPath)

	name := cfg.Environment
	if _, ok := cfg.Environments[userPrefs.Environment]; ok {
		name = userPrefs.Environment
	}
	if opts.Environment != "" {
		name = opts.Environment
	}
	env, err := cfg.ResolveEnvironment(name)
	if err != nil {
		return nil, err
	}

	a := &App{
		loop:      api.NewLoop(),
		store:     state.NewStore(name),
		log:       logging.WithComponent("app"),
		prefsPath: opts.PrefsPath,
		cfg:       cfg,
		env:       name,
		prefs:     userPrefs,
	}

	clientOpts := []api.Option{api.WithMaxAge(cfg.CacheMaxAge)}
	if cfg.SyncEnabled() {
		ledgerClient, err := ledger.NewClient(cfg.Ledger.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("init ledger client: %w", err)
		}
		a.syncer = ledger.NewSyncer(ledgerClient,
			ledger.WithEvents(cfg.Ledger.Events),
			ledger.WithStagger(cfg.Ledger.Stagger),
			ledger.WithReportHook(a.store.SetSync),
		)
		clientOpts = append(clientOpts, api.WithContentsHook(a.syncer.Trigger))
	}

	a.client, err = api.NewClient(env, a.loop, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	a.store.SetLoadingSource(a.client.Loading)

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	a.poller = NewPoller(a.client, a.store, interval)
	return a, nil
}

// Store exposes the shared snapshot store.
func (a *App) Store() *state.Store { return a.store }

// Theme returns the remembered theme name.
func (a *App) Theme() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs.Theme
}

// Refresh asks the poller for an immediate round.
func (a *App) Refresh() {
	a.poller.Refresh()
}

// Reload drops every cached value and refetches from the current environment.
func (a *App) Reload() {
	a.mu.Lock()
	name := a.env
	a.mu.Unlock()
	if err := a.SwitchEnvironment(name); err != nil {
		a.log.Warn().Err(err).Msg("reload failed")
	}
}

// NextEnvironment switches to the environment after the current one.
func (a *App) NextEnvironment() (string, error) {
	a.mu.Lock()
	next := a.cfg.NextEnvironment(a.env)
	a.mu.Unlock()
	return next, a.SwitchEnvironment(next)
}

// SwitchEnvironment emits the environment-change signal for name: in-flight
// requests are cancelled, caches rebuilt and every endpoint refetched.
func (a *App) SwitchEnvironment(name string) error {
	a.mu.Lock()
	env, err := a.cfg.ResolveEnvironment(name)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	a.env = name
	a.prefs.Environment = name
	saved := a.prefs
	a.mu.Unlock()

	a.client.SetEnvironment(env)
	// Queued behind the swap so results of the old environment cannot land
	// after the reset.
	a.loop.Dispatch(func() { a.store.SetEnvironment(name) })
	a.poller.Refresh()

	if err := prefs.Save(a.prefsPath, saved); err != nil {
		a.log.Warn().Err(err).Msg("save prefs failed")
	}
	return nil
}

// SetTheme remembers the dashboard theme.
func (a *App) SetTheme(name string) {
	a.mu.Lock()
	a.prefs.Theme = name
	saved := a.prefs
	a.mu.Unlock()
	if err := prefs.Save(a.prefsPath, saved); err != nil {
		a.log.Warn().Err(err).Msg("save prefs failed")
	}
}

// applyConfig installs a reloaded config. The environment is switched when
// the selected name or its definition changed.
func (a *App) applyConfig(next config.Config) {
	a.mu.Lock()
	prev := a.cfg
	current := a.env
	a.cfg = next
	a.mu.Unlock()

	target := current
	if next.Environment != prev.Environment {
		target = next.Environment
	} else if _, ok := next.Environments[current]; !ok {
		target = next.Environment
	}
	if target == current && prev.Environments[current] == next.Environments[current] {
		a.log.Debug().Msg("config reloaded; environment unchanged")
		return
	}
	if err := a.SwitchEnvironment(target); err != nil {
		a.log.Error().Err(err).Msg("apply reloaded environment failed")
	}
}

func (a *App) reloadConfig() {
	a.mu.Lock()
	path := a.cfg.Path
	a.mu.Unlock()

	next, err := config.Load(path)
	if err != nil {
		a.log.Error().Err(err).Str(logging.FieldEvent, "config.reload_failed").Msg("config reload failed; keeping previous")
		return
	}
	a.log.Info().Str(logging.FieldEvent, "config.reloaded").Str("path", path).Msg("config reloaded")
	a.applyConfig(next)
}

// Close stops outstanding requests and scheduled uploads.
func (a *App) Close() {
	a.client.Close()
	if a.syncer != nil {
		a.syncer.Close()
	}
}

// serve runs the dispatcher, poller, config watcher and optional metrics
// endpoint until ctx is done, plus fn when non-nil. The group stops as soon
// as fn returns.
func (a *App) serve(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	cfg := a.cfg
	a.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.loop.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error { return a.poller.Run(gctx) })
	if cfg.Path != "" {
		g.Go(func() error { return watchFile(gctx, a.log, cfg.Path, watchDebounce, a.reloadConfig) })
	}
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.MetricsAddr, a.log) })
	}
	if fn != nil {
		g.Go(func() error {
			defer cancel()
			return fn(gctx)
		})
	}
	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Run boots the sessiondeck dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The dashboard owns the terminal, so logs go to a file.
	closeLog, err := logging.ConfigureFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	a, err := New(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.serve(ctx, func(ctx context.Context) error {
		return ui.Run(ctx, ui.Options{
			Store:      a.store,
			Controller: a,
			Theme:      a.Theme(),
			Tick:       time.Second,
			LogPath:    cfg.LogFile,
		})
	})
}
