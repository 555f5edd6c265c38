// Package clients provides the instrumented HTTP client used to reach
// remote quote libraries.
package clients

import "errors"

// Transport-level failures. Adapters in acl translate them to domain errors.
var (
	// ErrCircuitOpen is returned while the breaker blocks requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure after all attempts.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrResponseTooLarge is returned by ReadBody when a response exceeds
	// the configured limit.
	ErrResponseTooLarge = errors.New("response body too large")
)
