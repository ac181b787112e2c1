package api

import (
	"fmt"
	"strings"

	"github.com/five82/sessiondeck/internal/content"
)

// Endpoint identifies one of the fixed remote resources.
type Endpoint int

const (
	News Endpoint = iota
	FeaturedSections
	Contents
	Videos
	LiveVideoAssets

	endpointCount
)

// Endpoints lists every endpoint in registry order.
func Endpoints() []Endpoint {
	return []Endpoint{News, FeaturedSections, Contents, Videos, LiveVideoAssets}
}

var endpointNames = [endpointCount]string{
	News:             "news",
	FeaturedSections: "featured",
	Contents:         "contents",
	Videos:           "videos",
	LiveVideoAssets:  "live",
}

func (e Endpoint) String() string {
	if e < 0 || e >= endpointCount {
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
	return endpointNames[e]
}

// ParseEndpoint resolves a name such as "news" or "live".
func ParseEndpoint(name string) (Endpoint, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for ep, n := range endpointNames {
		if n == trimmed {
			return Endpoint(ep), nil
		}
	}
	return 0, fmt.Errorf("unknown endpoint %q", name)
}

// loadIfNeeded reports whether a cached value satisfies a fetch. Live assets
// always go to the network.
func (e Endpoint) loadIfNeeded() bool {
	return e != LiveVideoAssets
}

// DecodeFunc turns a raw response body into the endpoint's typed value.
type DecodeFunc func([]byte) (any, error)

func wrap[T any](decode func([]byte) (T, error)) DecodeFunc {
	return func(data []byte) (any, error) {
		v, err := decode(data)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Registry binds each endpoint to its decoder.
type Registry [endpointCount]DecodeFunc

// DefaultRegistry returns the decoders from the content package.
func DefaultRegistry() Registry {
	return Registry{
		News:             wrap(content.DecodeNews),
		FeaturedSections: wrap(content.DecodeFeaturedSections),
		Contents:         wrap(content.DecodeContents),
		Videos:           wrap(content.DecodeVideos),
		LiveVideoAssets:  wrap(content.DecodeLiveAssets),
	}
}
