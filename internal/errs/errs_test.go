package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "quote", "NOPE.US", nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	wrapped := fmt.Errorf("pass context: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped), "kind should survive wrapping")

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		kind      Kind
		retryable bool
	}{
		{KindTransient, true},
		{KindTimeout, true},
		{KindUpstreamRejected, true},
		{KindParseFailure, false},
		{KindNotFound, false},
		{KindUnavailable, false},
	}

	for _, tc := range cases {
		err := New(tc.kind, "quote", "AAPL.US", nil)
		assert.Equal(t, tc.retryable, Retryable(err), "kind %s", tc.kind)
	}

	assert.False(t, Retryable(errors.New("untyped")))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(KindTransient, "quote", "AAPL.US", cause)

	assert.Contains(t, err.Error(), "quote")
	assert.Contains(t, err.Error(), "AAPL.US")
	assert.Contains(t, err.Error(), "transient")
	assert.Contains(t, err.Error(), "connection reset")

	assert.ErrorIs(t, err, cause, "cause should be unwrappable")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := New(KindUnavailable, "ratio", "MSFT.US", nil)
	assert.Equal(t, "fetch ratio MSFT.US: unavailable", err.Error())
}
