package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_MinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 0, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Check("client-a"), "request %d within limit", i+1)
	}

	err := rl.Check("client-a")
	require.Error(t, err)

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "minute", rle.Window)
	assert.Equal(t, 3, rle.Limit)
	assert.Positive(t, rle.RetryAfter)
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 0, 0)

	require.NoError(t, rl.Check("client-a"))
	require.Error(t, rl.Check("client-a"))
	require.NoError(t, rl.Check("client-b"))
}

func TestRateLimiter_ZeroDisablesWindow(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Check("client-a"))
	}
}

func TestRateLimiter_HourLimit(t *testing.T) {
	rl := NewRateLimiter(0, 2, 0)

	require.NoError(t, rl.Check("client-a"))
	require.NoError(t, rl.Check("client-a"))

	err := rl.Check("client-a")
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "hour", rle.Window)
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{Window: "minute", Limit: 60}
	assert.Contains(t, err.Error(), "minute")
	assert.Contains(t, err.Error(), "60")
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), new(*RateLimitError)))
}
