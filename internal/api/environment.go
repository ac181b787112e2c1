package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment is an immutable base URL plus one path per endpoint.
type Environment struct {
	name  string
	base  *url.URL
	paths [endpointCount]string
}

// DefaultPaths are used for endpoints an environment leaves unset.
var DefaultPaths = map[Endpoint]string{
	News:             "/news.json",
	FeaturedSections: "/featured_sections.json",
	Contents:         "/contents.json",
	Videos:           "/videos.json",
	LiveVideoAssets:  "/videos_live.json",
}

// NewEnvironment validates baseURL and fills missing paths from DefaultPaths.
func NewEnvironment(name, baseURL string, paths map[Endpoint]string) (Environment, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return Environment{}, fmt.Errorf("environment %q: base url is empty", name)
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return Environment{}, fmt.Errorf("environment %q: parse base url: %w", name, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return Environment{}, fmt.Errorf("environment %q: base url %q needs scheme and host", name, baseURL)
	}
	base.RawQuery = ""
	base.Fragment = ""
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	env := Environment{name: name, base: base}
	for _, ep := range Endpoints() {
		p := strings.TrimSpace(paths[ep])
		if p == "" {
			p = DefaultPaths[ep]
		}
		env.paths[ep] = p
	}
	return env, nil
}

// Name returns the environment's label.
func (e Environment) Name() string { return e.name }

// BaseURL returns the normalised base URL.
func (e Environment) BaseURL() string {
	if e.base == nil {
		return ""
	}
	return e.base.String()
}

// Path returns the configured path for ep.
func (e Environment) Path(ep Endpoint) string {
	if ep < 0 || ep >= endpointCount {
		return ""
	}
	return e.paths[ep]
}

// URL resolves ep's path against the base URL. Paths are relative to the
// base so a base with a path prefix keeps it.
func (e Environment) URL(ep Endpoint) (string, error) {
	if e.base == nil {
		return "", fmt.Errorf("environment not initialised")
	}
	p := e.Path(ep)
	if p == "" {
		return "", fmt.Errorf("no path for %s", ep)
	}
	rel, err := url.Parse(strings.TrimPrefix(p, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path for %s: %w", ep, err)
	}
	return e.base.ResolveReference(rel).String(), nil
}
