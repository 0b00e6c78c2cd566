package fetch

import (
	"errors"
	"fmt"
)

// Errors returned by the cable data client.
var (
	// ErrNetwork indicates a network connectivity issue.
	ErrNetwork = errors.New("network error fetching cable data")

	// ErrUnavailable indicates the circuit breaker stopped further requests.
	ErrUnavailable = errors.New("cable data server unavailable")

	// ErrInvalidResponse indicates a body that is not the expected GeoJSON.
	ErrInvalidResponse = errors.New("invalid response from cable data server")
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cable data server returned status %d for %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

// serverFault reports whether err should count against the circuit breaker.
// Client errors (4xx) mean the server is up.
func serverFault(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == 429
	}
	return errors.Is(err, ErrNetwork)
}
