package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/common"
)

var (
	// ErrInvalidWindow is returned for window bounds that are not status ids.
	ErrInvalidWindow = errors.New("invalid timeline window")
	// ErrNotPlaceholder is returned by LoadGap when the id is not a cached placeholder.
	ErrNotPlaceholder = errors.New("not a placeholder")
)

// FetchError is a failed remote call. The cache is left as it was before
// the call; whether to try again is up to the caller.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure was transient.
func (e *FetchError) Retryable() bool {
	return errors.Is(e.Err, client.ErrUnavailable)
}

// fetchFailure wraps err in a FetchError. Context errors pass through bare
// only when ctx itself has ended; a transport timeout is a fetch failure.
func fetchFailure(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	return &FetchError{Op: op, Err: err}
}

// failureReason is the metrics label for a fetch error.
func failureReason(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, client.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, client.ErrMalformedResponse), errors.Is(err, common.ErrorMalformedData):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, client.ErrAccountLocked):
		return "locked"
	}
	return "other"
}
