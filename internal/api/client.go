package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/logging"
	"github.com/five82/sessiondeck/internal/metrics"
)

const (
	defaultUserAgent = "sessiondeck/0.1"
	requestTimeout   = 15 * time.Second
	maxBodyBytes     = 32 << 20
)

// Client fetches the schedule endpoints, caches each endpoint's last good
// value and fans results out to observers on the dispatcher goroutine.
type Client struct {
	http       *http.Client
	userAgent  string
	registry   Registry
	dispatcher Dispatcher
	log        zerolog.Logger
	maxAge     time.Duration
	now        func() time.Time
	onContents func(content.Contents)

	ctx  context.Context
	stop context.CancelFunc

	mu      sync.RWMutex
	env     Environment
	entries [endpointCount]*cacheEntry
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRegistry replaces the endpoint decoders.
func WithRegistry(r Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxAge makes cached values older than d count as missing for
// load-if-needed fetches. Zero keeps values until the environment changes.
func WithMaxAge(d time.Duration) Option {
	return func(c *Client) { c.maxAge = d }
}

// WithContentsHook registers fn to run on the dispatcher after every
// successful contents fetch has been delivered to observers.
func WithContentsHook(fn func(content.Contents)) Option {
	return func(c *Client) { c.onContents = fn }
}

// NewClient builds a Client for env that delivers through dispatcher.
func NewClient(env Environment, dispatcher Dispatcher, opts ...Option) (*Client, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is nil")
	}
	if env.base == nil {
		return nil, fmt.Errorf("environment not initialised")
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Client{
		http:       &http.Client{Timeout: requestTimeout},
		userAgent:  defaultUserAgent,
		registry:   DefaultRegistry(),
		dispatcher: dispatcher,
		log:        logging.WithComponent("api"),
		now:        time.Now,
		ctx:        ctx,
		stop:       stop,
		env:        env,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchNews loads the news feed and delivers it to fn.
func (c *Client) FetchNews(owner string, fn func([]content.NewsItem, error)) {
	c.fetch(News, owner, typed(News, fn))
}

// FetchFeaturedSections loads the featured sections and delivers them to fn.
func (c *Client) FetchFeaturedSections(owner string, fn func([]content.FeaturedSection, error)) {
	c.fetch(FeaturedSections, owner, typed(FeaturedSections, fn))
}

// FetchContents loads the schedule and delivers it to fn. A successful load
// also runs the contents hook.
func (c *Client) FetchContents(owner string, fn func(content.Contents, error)) {
	c.fetch(Contents, owner, typed(Contents, fn))
}

// FetchVideos loads the session video catalog and delivers it to fn.
func (c *Client) FetchVideos(owner string, fn func(content.VideoCatalog, error)) {
	c.fetch(Videos, owner, typed(Videos, fn))
}

// FetchLiveVideoAssets always goes to the network, regardless of cache state.
func (c *Client) FetchLiveVideoAssets(owner string, fn func(content.LiveAssets, error)) {
	c.fetch(LiveVideoAssets, owner, typed(LiveVideoAssets, fn))
}

// Fetch loads ep for callers that work with untyped values, such as the CLI.
func (c *Client) Fetch(ep Endpoint, owner string, fn func(any, error)) {
	if ep < 0 || ep >= endpointCount {
		return
	}
	var obs observer
	if fn != nil {
		obs = observer(fn)
	}
	c.fetch(ep, owner, obs)
}

// Unsubscribe removes owner's observer for ep.
func (c *Client) Unsubscribe(ep Endpoint, owner string) {
	if ep < 0 || ep >= endpointCount {
		return
	}
	c.dispatcher.Dispatch(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if entry := c.entries[ep]; entry != nil {
			entry.forget(owner)
		}
	})
}

// SetEnvironment cancels every in-flight request, installs env and rebuilds
// all cache entries. Cached values and observers are discarded.
func (c *Client) SetEnvironment(env Environment) {
	c.dispatcher.Dispatch(func() { c.swap(env) })
}

// Environment returns the current environment.
func (c *Client) Environment() Environment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.env
}

// Cached returns the last decoded value for ep.
func (c *Client) Cached(ep Endpoint) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ep < 0 || ep >= endpointCount || c.entries[ep] == nil || !c.entries[ep].hasValue {
		return nil, false
	}
	return c.entries[ep].value, true
}

// Loading reports whether a request for ep is in flight.
func (c *Client) Loading(ep Endpoint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ep < 0 || ep >= endpointCount || c.entries[ep] == nil {
		return false
	}
	return c.entries[ep].inFlight()
}

// Close cancels every outstanding request. Results still in transit are dropped.
func (c *Client) Close() {
	c.stop()
}

func (c *Client) fetch(ep Endpoint, owner string, obs observer) {
	c.dispatcher.Dispatch(func() { c.load(ep, owner, obs) })
}

// load runs on the dispatcher.
func (c *Client) load(ep Endpoint, owner string, obs observer) {
	c.mu.Lock()
	entry := c.entries[ep]
	if entry == nil {
		entry = newCacheEntry(ep)
		c.entries[ep] = entry
	}
	if obs != nil {
		entry.observe(owner, obs)
	}

	if ep.loadIfNeeded() && entry.fresh(c.now(), c.maxAge) {
		value := entry.value
		c.mu.Unlock()
		metrics.RecordCacheHit(ep.String())
		c.log.Debug().Str(logging.FieldEndpoint, ep.String()).Msg("served from cache")
		if obs != nil {
			obs(value, nil)
		}
		return
	}

	c.issue(entry)
	c.mu.Unlock()
}

// issue supersedes any in-flight request for entry. Callers hold c.mu.
func (c *Client) issue(entry *cacheEntry) {
	ep := entry.endpoint
	if previous := entry.requestID; entry.stop() {
		metrics.RecordCancel(ep.String())
		c.log.Debug().
			Str(logging.FieldEndpoint, ep.String()).
			Str(logging.FieldRequestID, previous).
			Msg("superseded in-flight request")
	}

	entry.gen++
	gen := entry.gen
	ctx, cancel := context.WithCancel(c.ctx)
	entry.cancel = cancel
	entry.requestID = uuid.NewString()

	reqURL, urlErr := c.env.URL(ep)
	c.log.Debug().
		Str(logging.FieldEndpoint, ep.String()).
		Str(logging.FieldRequestID, entry.requestID).
		Str(logging.FieldURL, reqURL).
		Msg("request issued")

	go func() {
		var body []byte
		err := urlErr
		if err != nil {
			err = networkError(ep, 0, err)
		} else {
			body, err = c.get(ctx, ep, reqURL)
		}
		c.dispatcher.Dispatch(func() { c.complete(entry, gen, body, err) })
	}()
}

// complete runs on the dispatcher. Only the newest request of the current
// entry is delivered.
func (c *Client) complete(entry *cacheEntry, gen uint64, body []byte, err error) {
	ep := entry.endpoint
	c.mu.Lock()
	if c.entries[ep] != entry || entry.gen != gen || c.ctx.Err() != nil {
		c.mu.Unlock()
		c.log.Debug().Str(logging.FieldEndpoint, ep.String()).Msg("dropped stale result")
		return
	}
	requestID := entry.requestID
	entry.stop()

	var value any
	if err == nil {
		value, err = c.decode(ep, body)
	}
	entry.record(value, err, c.now())
	observers := entry.snapshotObservers()
	c.mu.Unlock()

	event := c.log.Debug()
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
		event = c.log.Warn().Err(err)
	}
	metrics.RecordFetch(ep.String(), outcome)
	event.Str(logging.FieldEndpoint, ep.String()).
		Str(logging.FieldRequestID, requestID).
		Str("outcome", outcome).
		Msg("request finished")

	for _, obs := range observers {
		obs(value, err)
	}

	if err == nil && ep == Contents && c.onContents != nil {
		if contents, ok := value.(content.Contents); ok {
			c.onContents(contents)
		}
	}
}

// swap runs on the dispatcher.
func (c *Client) swap(env Environment) {
	c.mu.Lock()
	cancelled := 0
	for _, entry := range c.entries {
		if entry != nil && entry.stop() {
			metrics.RecordCancel(entry.endpoint.String())
			cancelled++
		}
	}
	old := c.env
	c.env = env
	for _, ep := range Endpoints() {
		c.entries[ep] = newCacheEntry(ep)
	}
	c.mu.Unlock()

	metrics.RecordEnvironmentChange()
	c.log.Info().
		Str(logging.FieldEvent, "environment.changed").
		Str("from", old.Name()).
		Str(logging.FieldEnv, env.Name()).
		Str("base_url", env.BaseURL()).
		Int("cancelled", cancelled).
		Msg("environment replaced")
}

func (c *Client) decode(ep Endpoint, body []byte) (value any, err error) {
	decode := c.registry[ep]
	if decode == nil {
		return nil, adapterError(ep, fmt.Errorf("no decoder registered"))
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = adapterError(ep, fmt.Errorf("decoder panic: %v", r))
		}
	}()
	value, err = decode(body)
	if err != nil {
		return nil, adapterError(ep, err)
	}
	return value, nil
}

func (c *Client) get(ctx context.Context, ep Endpoint, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, networkError(ep, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(ep, 0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, networkError(ep, resp.StatusCode, fmt.Errorf("%s returned status %d", reqURL, resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(ep, 0, fmt.Errorf("read response: %w", err))
	}
	return body, nil
}

func typed[T any](ep Endpoint, fn func(T, error)) observer {
	if fn == nil {
		return nil
	}
	return func(value any, err error) {
		var zero T
		if err != nil {
			fn(zero, err)
			return
		}
		v, ok := value.(T)
		if !ok {
			fn(zero, adapterError(ep, fmt.Errorf("decoded %T, want %T", value, zero)))
			return
		}
		fn(v, nil)
	}
}
