// Package source contains the rate providers. Each adapter fetches one
// provider and normalizes its response into canonical pair-key rates; every
// transport or payload failure surfaces as an ExternalServiceError so the
// update coordinator never sees provider-specific error types.
package source

import (
	"context"
	"fmt"
)

// Meta carries transport details of a successful fetch, recorded alongside
// each observation in the history log.
type Meta struct {
	RequestMs  int64
	StatusCode int
	ETag       string
}

// Result is one adapter's normalized output. Pairs maps pair keys to rates.
// RawIDs maps pair keys back to the provider's own identifier when the
// provider uses one.
type Result struct {
	Pairs  map[string]float64
	RawIDs map[string]string
	Meta   Meta
}

// Source is the capability every provider adapter implements. Fetch must
// not mutate shared state; its only side effect is the network call.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

// ExternalServiceError is the uniform failure kind for provider trouble:
// timeouts, connection failures, non-success statuses, malformed payloads
// and exhausted retries.
type ExternalServiceError struct {
	Service string
	Reason  string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Reason)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
