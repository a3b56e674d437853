package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWipeByteArray(t *testing.T) {
	token := []byte("access-token")
	view := token[:6]

	WipeByteArray(token)

	require.Equal(t, make([]byte, len("access-token")), token)
	require.Equal(t, make([]byte, 6), view, "wipes the backing array")
}

func TestWipeByteArray_EmptyAndNil(t *testing.T) {
	require.NotPanics(t, func() {
		WipeByteArray(nil)
		WipeByteArray([]byte{})
	})
}

func TestSentinelErrorsMatchWhenWrapped(t *testing.T) {
	for _, e := range []error{ErrorNotFound, ErrorAlreadyExists, ErrStorage, ErrorMalformedData, ErrInvalidPassphrase} {
		wrapped := fmt.Errorf("account 7: %w", e)
		require.True(t, errors.Is(wrapped, e))
		require.False(t, errors.Is(wrapped, errors.New(e.Error())))
	}
}
