// Package errs defines the typed error taxonomy for source fetches.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure. The class decides retry policy:
// transient and throttle errors are retried with backoff, parse and
// not-found errors are terminal for the attempt.
type Kind string

const (
	KindTransient        Kind = "transient"         // connection reset, 5xx
	KindTimeout          Kind = "timeout"           // per-attempt deadline exceeded
	KindUpstreamRejected Kind = "upstream_rejected" // explicit throttle signal (429)
	KindParseFailure     Kind = "parse_failure"     // response could not be interpreted
	KindNotFound         Kind = "not_found"         // symbol unknown to the source
	KindUnavailable      Kind = "unavailable"       // no source configured
)

// FetchError is the typed error surfaced by the fetch layer.
type FetchError struct {
	Kind   Kind
	Symbol string
	Fact   string // "quote", "ratio", "earnings"
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s %s: %s: %v", e.Fact, e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %s", e.Fact, e.Symbol, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New creates a FetchError of the given kind.
func New(kind Kind, fact, symbol string, err error) *FetchError {
	return &FetchError{Kind: kind, Symbol: symbol, Fact: fact, Err: err}
}

// KindOf extracts the Kind from an error chain, or "" if none.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Retryable reports whether the error class is worth another attempt.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindTimeout, KindUpstreamRejected:
		return true
	}
	return false
}
