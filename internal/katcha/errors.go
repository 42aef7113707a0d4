package katcha

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means no API key/secret or no access token is
	// available; the call fails before any network I/O
	ErrMissingCredentials = errors.New("katcha: missing credentials or token")

	// ErrNoRefreshToken means a refresh was requested with nothing to
	// refresh; the session cannot be recovered
	ErrNoRefreshToken = errors.New("katcha: no refresh token available")
)

// HTTPError is a non-2xx backend response, carrying the status and the
// parsed-or-raw body
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("katcha: backend returned status %d: %s", e.Status, e.Body)
}
