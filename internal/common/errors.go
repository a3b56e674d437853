// Package common defines sentinel errors and small helpers shared by the
// cache, the services and the CLI. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrStorage wraps any failure of the local cache store.
	ErrStorage = errors.New("storage error")

	// Validation errors for data received from the server.
	ErrorMalformedData = errors.New("malformed data")

	// Credential sealing errors.
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)
