package gateway

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrNotJSON is returned when a typed decode meets a non-JSON body
var ErrNotJSON = errors.New("response body is not JSON")

// APIError is a non-2xx response. Body holds the raw response text.
type APIError struct {
	StatusCode int
	Body       string
	Method     string
	Path       string
}

// Error keeps the numeric status in the message text.
func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unauthorized reports whether the backend rejected the session
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// NetworkError is a transport failure: no HTTP response was received or read
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
