package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoSource is returned when no catalog source is configured
	ErrNoSource = errors.New("no catalog source configured")

	// ErrUpstream wraps failures reported by a remote catalog
	ErrUpstream = errors.New("catalog upstream error")

	// ErrUnsupportedFormat is returned when a catalog file has an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported catalog file format")
)

// StatusError is returned by HTTPSource when the upstream answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s returned %d", ErrUpstream, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

// Retryable reports whether the status indicates a transient failure
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
