package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfWalksWrapChain(t *testing.T) {
	base := AlreadyBooked(errors.New("row untouched"))
	wrapped := fmt.Errorf("booking failed: %w", base)

	assert.Equal(t, ErrAlreadyBooked, CodeOf(wrapped))
}

func TestCodeOfUnknownErrorIsInternal(t *testing.T) {
	assert.Equal(t, ErrInternal, CodeOf(errors.New("boom")))
}

func TestIsMatchesByCode(t *testing.T) {
	a := NotFound("slot", errors.New("no rows"))
	b := NotFound("therapist", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, AlreadyBooked(nil)))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreUnavailable(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(StoreUnavailable(nil)))
	assert.False(t, Retryable(AlreadyBooked(nil)))
	assert.False(t, Retryable(NotFound("slot", nil)))
	assert.False(t, Retryable(errors.New("boom")))
}
