package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/tootcache/internal/common"
)

var (
	// ErrUnavailable covers transport failures, timeouts, rate limiting and
	// server-side errors. Retrying later may succeed.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the access token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse means the body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrAccountLocked means no client is registered for the local account.
	ErrAccountLocked = errors.New("account is locked")
)

// HTTPError is a non-2xx response not covered by the sentinels above.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Is lets a 404 match common.ErrorNotFound.
func (e *HTTPError) Is(target error) bool {
	return e.StatusCode == http.StatusNotFound && target == common.ErrorNotFound
}
