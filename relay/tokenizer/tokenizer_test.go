package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamenight/planner-api/common/config"
)

func TestEstimateTextTokens(t *testing.T) {
	t.Run("never negative", func(t *testing.T) {
		require.GreaterOrEqual(t, EstimateTextTokens(""), 0)
		require.Positive(t, EstimateTextTokens("plan a game night"))
	})

	t.Run("approximate mode uses character ratio", func(t *testing.T) {
		orig := config.ApproximateTokenEnabled
		config.ApproximateTokenEnabled = true
		defer func() { config.ApproximateTokenEnabled = orig }()

		text := "0123456789" // 10 chars
		require.Equal(t, 3, EstimateTextTokens(text))
	})

	t.Run("longer text estimates higher", func(t *testing.T) {
		short := EstimateTextTokens("one two")
		long := EstimateTextTokens("one two three four five six seven eight")
		require.Greater(t, long, short)
	})
}
