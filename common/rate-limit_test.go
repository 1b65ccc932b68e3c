package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryRateLimiter(t *testing.T) {
	t.Run("admits up to the cap", func(t *testing.T) {
		var limiter InMemoryRateLimiter
		limiter.Init(0)
		for i := 0; i < 3; i++ {
			require.True(t, limiter.Request("ip1", 3, 60))
		}
		require.False(t, limiter.Request("ip1", 3, 60))
	})

	t.Run("keys are independent", func(t *testing.T) {
		var limiter InMemoryRateLimiter
		limiter.Init(0)
		require.True(t, limiter.Request("ip1", 1, 60))
		require.False(t, limiter.Request("ip1", 1, 60))
		require.True(t, limiter.Request("ip2", 1, 60))
	})

	t.Run("window slides with zero duration", func(t *testing.T) {
		var limiter InMemoryRateLimiter
		limiter.Init(0)
		require.True(t, limiter.Request("ip1", 1, 0))
		// duration 0 means the oldest entry is always expired
		require.True(t, limiter.Request("ip1", 1, 0))
	})
}
