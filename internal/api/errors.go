package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks transport and HTTP-level failures.
	ErrNetwork = errors.New("network error")
	// ErrAdapter marks payloads that could not be decoded into the expected type.
	ErrAdapter = errors.New("adapter error")
)

// Kind classifies an Error.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindAdapter
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAdapter:
		return "adapter"
	default:
		return "unknown"
	}
}

// Error is delivered to observers when a fetch fails.
type Error struct {
	Kind     Kind
	Endpoint Endpoint
	Status   int   // HTTP status when the server answered with >= 400
	Err      error // underlying cause
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Endpoint, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case KindNetwork:
		sentinel = ErrNetwork
	case KindAdapter:
		sentinel = ErrAdapter
	}
	out := make([]error, 0, 2)
	if sentinel != nil {
		out = append(out, sentinel)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func networkError(ep Endpoint, status int, cause error) *Error {
	return &Error{Kind: KindNetwork, Endpoint: ep, Status: status, Err: cause}
}

func adapterError(ep Endpoint, cause error) *Error {
	return &Error{Kind: KindAdapter, Endpoint: ep, Err: cause}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
