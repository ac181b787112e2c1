package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Store is the remote ledger of uploaded session records.
type Store interface {
	List(ctx context.Context) ([]SessionRecord, error)
	Append(ctx context.Context, rec SessionRecord) error
}

// Ensure Client implements Store at compile time.
var _ Store = (*Client)(nil)

const (
	defaultUserAgent = "sessiondeck/0.1"
	requestTimeout   = 20 * time.Second
)

// Client talks to the ledger's JSON endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a ledger Client for rawURL.
func NewClient(rawURL string, hc *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("ledger url is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse ledger url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ledger url %q needs scheme and host", rawURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: requestTimeout}
	}
	return &Client{endpoint: u, http: hc, userAgent: defaultUserAgent}, nil
}

// List reads every row currently in the ledger.
func (c *Client) List(ctx context.Context) ([]SessionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ledger list returned status %d", resp.StatusCode)
	}
	var rows []SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

// Append posts rec as a single-element array.
func (c *Client) Append(ctx context.Context, rec SessionRecord) error {
	payload, err := json.Marshal([]SessionRecord{rec})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ledger append %s returned status %d", rec.Identifier, resp.StatusCode)
	}
	return nil
}
