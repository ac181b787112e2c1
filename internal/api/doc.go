// Package api fetches the schedule endpoints and caches their results.
//
// # Endpoints and environments
//
// Five endpoints are known: news, featured, contents, videos and live. An
// Environment pairs a base URL with one path per endpoint; paths are
// resolved relative to the base so a base such as https://host/v1 keeps its
// prefix. The Registry binds each endpoint to a decoder from the content
// package and can be replaced with WithRegistry.
//
// # Delivery
//
// Every Client method that touches the cache is dispatched onto a
// Dispatcher, normally a *Loop run by the caller. Observers are invoked on
// that goroutine, one callback per owner and endpoint; registering the same
// owner again replaces its callback.
//
// A fetch for news, featured, contents or videos is answered from the cache
// when a value without error exists (and is younger than WithMaxAge, when
// set). The cached value is handed only to the caller. Any other fetch
// cancels the endpoint's in-flight request and issues a new one, and the
// result is delivered to every observer of that endpoint. Live assets are
// always refetched. Results of superseded requests are dropped.
//
// SetEnvironment cancels all in-flight requests and discards every cached
// value and observer.
//
// # Errors
//
// Observers receive *Error values. errors.Is(err, ErrNetwork) matches
// transport failures and HTTP statuses of 400 and above; errors.Is(err,
// ErrAdapter) matches payloads that could not be decoded. The underlying
// cause is reachable through the same chain.
package api
