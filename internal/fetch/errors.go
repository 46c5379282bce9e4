package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a page exceeds the configured size cap.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrPageNotFound is returned by DirFetcher when no file exists for a source.
	ErrPageNotFound = errors.New("saved page not found")

	// ErrInvalidURL is returned when a page URL cannot be built.
	ErrInvalidURL = errors.New("invalid page URL")
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
