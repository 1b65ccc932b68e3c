package streaming

import (
	"strings"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/gamenight/planner-api/relay/adaptor/gemini"
)

// Accumulator relays streamed text increments while tallying token usage.
// Text chunks are surfaced exactly once, in arrival order; usage metadata is
// accumulated on the side and never injected into the emitted text.
type Accumulator struct {
	promptTokens int
	cachedTokens int

	transcript       strings.Builder
	candidatesTokens int
	// totalTokens keeps the last total reported by the upstream, not a sum.
	totalTokens int
}

// NewAccumulator starts a tally for one streaming response. promptTokens is
// the count sent to the upstream (excluding cached content); cachedTokens is
// the cache entry's contribution, zero when no cache was used.
func NewAccumulator(promptTokens, cachedTokens int) *Accumulator {
	return &Accumulator{
		promptTokens: promptTokens,
		cachedTokens: cachedTokens,
	}
}

// Consume folds one stream chunk into the tally and returns its text, if any.
// Chunks without text still contribute their usage metadata; chunks missing
// both are skipped without error.
func (a *Accumulator) Consume(chunk *gemini.GenerateResponse) (text string, ok bool) {
	if chunk == nil {
		return "", false
	}
	if meta := chunk.UsageMetadata; meta != nil {
		a.candidatesTokens += meta.CandidatesTokenCount
		if meta.TotalTokenCount > 0 {
			a.totalTokens = meta.TotalTokenCount
		}
	}
	text = chunk.Text()
	if text == "" {
		return "", false
	}
	a.transcript.WriteString(text)
	return text, true
}

// CandidatesTokens returns the summed completion token count so far.
func (a *Accumulator) CandidatesTokens() int {
	return a.candidatesTokens
}

// FinalTotal computes the stream's total token usage: the upstream-reported
// total when one was seen, otherwise prompt + candidates + cached.
func (a *Accumulator) FinalTotal() int {
	if a.totalTokens > 0 {
		return a.totalTokens
	}
	return a.promptTokens + a.candidatesTokens + a.cachedTokens
}

// Transcript returns the full text relayed so far.
func (a *Accumulator) Transcript() string {
	return a.transcript.String()
}

// LogFinal records the finished stream's usage estimate. The tally is
// observable only through this side channel; streaming clients receive raw
// text alone.
func (a *Accumulator) LogFinal(lg glog.Logger) {
	lg.Info("stream finished",
		zap.Int("prompt_tokens", a.promptTokens),
		zap.Int("candidates_tokens", a.candidatesTokens),
		zap.Int("cached_tokens", a.cachedTokens),
		zap.Int("total_tokens", a.FinalTotal()))
}
