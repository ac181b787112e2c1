package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/five82/sessiondeck/internal/logging"
)

const waitTimeout = 2 * time.Second

var testPayloads = map[Endpoint]string{
	News:             `{"items":[{"id":"n1","title":"Welcome"}]}`,
	FeaturedSections: `{"sections":[{"ordinal":1,"title":"Picks"}]}`,
	Contents:         `{"events":[],"tracks":[],"contents":[{"id":"wwdc2017-102","eventId":"wwdc2017","title":"State of the Union"}]}`,
	Videos:           `{"sessions":[{"id":"102","year":2017}]}`,
	LiveVideoAssets:  `{"wwdc2017-101":{"sessionId":"wwdc2017-101","hls":"https://live/101.m3u8"}}`,
}

type reply struct {
	status int
	body   string
	err    error
}

type call struct {
	req   *http.Request
	reply chan reply
}

func (c *call) respond(status int, body string) {
	c.reply <- reply{status: status, body: body}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// fakeTransport hands every request to the test and blocks until the test
// answers or the request context ends.
type fakeTransport struct {
	calls chan *call
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := &call{req: req, reply: make(chan reply, 1)}
	f.calls <- c
	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case r := <-c.reply:
		if r.err != nil {
			return nil, r.err
		}
		return &http.Response{
			StatusCode: r.status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(r.body)),
			Request:    req,
		}, nil
	}
}

type harness struct {
	client    *Client
	loop      *Loop
	transport *fakeTransport
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })

	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(done)
	}()

	tr := &fakeTransport{calls: make(chan *call, 32)}
	base := []Option{WithHTTPClient(&http.Client{Transport: tr}), WithLogger(logging.Nop())}
	client, err := NewClient(mustEnv(t, "production", "https://prod.example.com/api"), loop, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		cancel()
		<-done
	})
	return &harness{client: client, loop: loop, transport: tr}
}

func (h *harness) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-h.transport.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a request")
		return nil
	}
}

// quiet asserts that no request reached the transport.
func (h *harness) quiet(t *testing.T) {
	t.Helper()
	h.barrier(t)
	select {
	case c := <-h.transport.calls:
		t.Fatalf("unexpected request to %s", c.req.URL)
	default:
	}
}

func (h *harness) barrier(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := h.loop.Barrier(ctx); err != nil {
		t.Fatalf("barrier: %v", err)
	}
}

type result struct {
	value any
	err   error
}

func collector() (chan result, func(any, error)) {
	ch := make(chan result, 16)
	return ch, func(v any, err error) { ch <- result{value: v, err: err} }
}

func receive(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a result")
		return result{}
	}
}

func expectNone(t *testing.T, ch <-chan result) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected delivery: %#v", r)
	default:
	}
}

func waitCancelled(t *testing.T, c *call) {
	t.Helper()
	select {
	case <-c.req.Context().Done():
	case <-time.After(waitTimeout):
		t.Fatalf("request to %s was not cancelled", c.req.URL)
	}
}

func mustEnv(t *testing.T, name, base string) Environment {
	t.Helper()
	env, err := NewEnvironment(name, base, nil)
	if err != nil {
		t.Fatalf("NewEnvironment(%q) returned error: %v", base, err)
	}
	return env
}

func contextWithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), waitTimeout)
}
