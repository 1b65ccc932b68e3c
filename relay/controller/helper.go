package controller

import (
	"context"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"

	"github.com/gamenight/planner-api/dto"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	"github.com/gamenight/planner-api/relay/tokenizer"
)

// countFunc is the token counting capability used by the trimming loop.
type countFunc func(ctx context.Context, contents []gemini.Content) (int, error)

// trimHistory removes the oldest history entries until the prompt fits the
// model's input budget or only one message remains. Each removal triggers a
// recount through count; a counting failure aborts the whole request rather
// than leaving a partially trimmed state. The returned token count is the
// final history count; the caller decides whether the remaining overflow is
// fatal.
func trimHistory(ctx context.Context, systemTokens int, history []gemini.Content, limit int, count countFunc) (trimmed []gemini.Content, historyTokens int, removed int, err error) {
	lg := gmw.GetLogger(ctx)

	historyTokens, err = count(ctx, history)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "count history tokens")
	}

	for systemTokens+historyTokens > limit && len(history) > 1 {
		history = history[1:]
		removed++
		historyTokens, err = count(ctx, history)
		if err != nil {
			return nil, 0, removed, errors.Wrap(err, "recount tokens during trimming")
		}
		lg.Info("context trimming: removed oldest message",
			zap.Int("history_tokens", historyTokens),
			zap.Int("remaining_messages", len(history)))
	}

	return history, historyTokens, removed, nil
}

// buildGenerationConfig validates the sampling parameters and converts them to
// the upstream shape. Violations are a non-retryable client error.
func buildGenerationConfig(req *dto.ChatRequest) (*gemini.GenerationConfig, error) {
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return nil, errors.Errorf("temperature %v out of range [0, 2]", *req.Temperature)
	}
	if req.MaxTokens != nil && *req.MaxTokens < 1 {
		return nil, errors.Errorf("max_tokens %d must be positive", *req.MaxTokens)
	}
	return &gemini.GenerationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}, nil
}

// assembleUsage builds the response usage block from a batch result. Upstream
// usage metadata wins when present; otherwise the completion is counted via
// the upstream capability, falling back to a local estimate. Usage accounting
// never fails the request.
func assembleUsage(ctx context.Context, count countFunc, resp *gemini.GenerateResponse, promptTokens int, cachedTokens int, usedCache bool) dto.UsageInfo {
	lg := gmw.GetLogger(ctx)
	completionText := resp.Text()

	usage := dto.UsageInfo{PromptTokens: promptTokens}
	if usedCache {
		cached := cachedTokens
		usage.CachedContentTokenCount = &cached
	}

	if meta := resp.UsageMetadata; meta != nil {
		if meta.PromptTokenCount > 0 {
			usage.PromptTokens = meta.PromptTokenCount
		}
		completion := meta.CandidatesTokenCount
		usage.CompletionTokens = &completion
		// Zero means the upstream omitted the field; the cache decision's
		// count stands rather than being cleared.
		if meta.CachedContentTokenCount > 0 {
			cached := meta.CachedContentTokenCount
			usage.CachedContentTokenCount = &cached
		}
		usage.TotalTokens = meta.TotalTokenCount
		if usage.TotalTokens == 0 && (usage.PromptTokens > 0 || completion > 0) {
			usage.TotalTokens = usage.PromptTokens + completion + cachedValue(usage.CachedContentTokenCount)
		}
		return usage
	}

	lg.Warn("no usage metadata in batch response, counting completion tokens manually")
	completion, err := count(ctx, []gemini.Content{{Role: dto.RoleModel, Parts: []gemini.Part{{Text: completionText}}}})
	if err != nil {
		lg.Warn("manual completion token count failed, using local estimate", zap.Error(err))
		completion = tokenizer.EstimateTextTokens(completionText)
	}
	usage.CompletionTokens = &completion
	usage.TotalTokens = usage.PromptTokens + completion + cachedValue(usage.CachedContentTokenCount)
	return usage
}

func cachedValue(cached *int) int {
	if cached == nil {
		return 0
	}
	return *cached
}
