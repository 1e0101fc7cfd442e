package client

import (
	"errors"
	"fmt"

	"workdigest/internal"
)

// TransportError is a network-level failure reaching a backend: connection
// refused, DNS failure or the per-request timeout.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestRejectedError is a non-success HTTP response from a backend.
type RequestRejectedError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *RequestRejectedError) Error() string {
	return fmt.Sprintf("request to %s rejected with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var rejected *RequestRejectedError
	if errors.As(err, &rejected) {
		return rejected.StatusCode == 401
	}
	return false
}

// Diagnose renders err as the single line shown to the user.
func Diagnose(err error) string {
	var (
		cfgErr    *internal.ConfigError
		rejected  *RequestRejectedError
		transport *TransportError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "Configuration error: " + cfgErr.Error()
	case errors.As(err, &rejected):
		return fmt.Sprintf("HTTP Error: %d - %s", rejected.StatusCode, rejected.Body)
	case errors.As(err, &transport):
		return fmt.Sprintf("API Request Failed: %v", transport)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
