package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/gamenight/planner-api/common/config"
	"github.com/gamenight/planner-api/common/logger"
)

// Local token estimator for the degraded usage-accounting path. The upstream
// countTokens capability is authoritative; this package only fills in when it
// is unreachable, so usage reporting never fails a request.

var (
	initOnce       sync.Once
	defaultEncoder *tiktoken.Tiktoken
)

// Init loads the token encoder. Failure is tolerated: estimation falls back
// to whitespace counting. Call once at startup; EstimateTextTokens works
// either way.
func Init() {
	initOnce.Do(func() {
		encoder, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Logger.Warn("failed to load token encoder, falling back to whitespace estimates")
			return
		}
		defaultEncoder = encoder
	})
}

// EstimateTextTokens approximates the token count of text without a network
// round trip. tiktoken does not match Gemini's tokenizer exactly, but it is a
// far better estimate than word counting.
func EstimateTextTokens(text string) int {
	if config.ApproximateTokenEnabled {
		return int(float64(len(text)) * config.ApproximateTokenRatio)
	}
	if defaultEncoder != nil {
		return len(defaultEncoder.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}
