package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/gamenight/planner-api/common"
	"github.com/gamenight/planner-api/common/graceful"
	"github.com/gamenight/planner-api/common/helper"
	"github.com/gamenight/planner-api/dto"
	"github.com/gamenight/planner-api/monitor"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	"github.com/gamenight/planner-api/relay/cache"
	relaymodel "github.com/gamenight/planner-api/relay/model"
	"github.com/gamenight/planner-api/relay/profile"
	"github.com/gamenight/planner-api/relay/prompt"
	"github.com/gamenight/planner-api/relay/retry"
	"github.com/gamenight/planner-api/relay/streaming"
)

// Relay sequences the plan-event pipeline: validate, resolve model, count
// tokens, trim, coordinate caching, dispatch with retries, then stream or
// assemble the response. All collaborators are injected at startup; Relay
// itself holds no per-request state.
type Relay struct {
	registry    *profile.Registry
	client      gemini.Client
	coordinator *cache.Coordinator
	policy      retry.Policy
}

func NewRelay(registry *profile.Registry, client gemini.Client, coordinator *cache.Coordinator, policy retry.Policy) *Relay {
	return &Relay{
		registry:    registry,
		client:      client,
		coordinator: coordinator,
		policy:      policy,
	}
}

// PlanEvent handles POST /plan-event. Any step's failure short-circuits the
// remaining pipeline; once dispatched, no earlier step is revisited.
func (r *Relay) PlanEvent(c *gin.Context) {
	done := graceful.BeginRequest()
	defer done()
	start := time.Now()
	lg := gmw.GetLogger(c)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.Wrap(err, "invalid request body"),
			relaymodel.ErrCodeInvalidRequest, http.StatusBadRequest))
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(err, relaymodel.ErrCodeInvalidRequest, http.StatusBadRequest))
		return
	}
	lg = lg.With(zap.String("model", req.Model), zap.Bool("stream", req.Stream))

	prof, ok := r.registry.Get(req.Model)
	if !ok {
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.Errorf("Invalid model specified: %q. Available models: %v", req.Model, r.registry.Names()),
			relaymodel.ErrCodeInvalidModel, http.StatusBadRequest))
		return
	}
	defer func() {
		monitor.RecordRequest(c.Writer.Status(), req.Model, time.Since(start))
		lg.Debug("plan-event finished",
			zap.Int("status", c.Writer.Status()),
			zap.Int64("elapsed_ms", helper.CalcElapsedTime(start)))
	}()

	systemPrompt := prompt.SystemPrompt()
	history, err := prompt.FormatHistory(req.Messages)
	if err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(err, relaymodel.ErrCodeInvalidRequest, http.StatusBadRequest))
		return
	}

	count := func(ctx context.Context, contents []gemini.Content) (int, error) {
		return r.client.CountTokens(ctx, prof.APIPath, contents)
	}

	systemTokens, err := count(c, []gemini.Content{systemPrompt})
	if err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.New("Error calculating token count"),
			relaymodel.ErrCodeTokenCountFailed, http.StatusInternalServerError).WithRaw(err))
		return
	}

	history, historyTokens, removed, err := trimHistory(c, systemTokens, history, prof.InputTokenLimit, count)
	if err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.New("Error managing context window size"),
			relaymodel.ErrCodeTokenCountFailed, http.StatusInternalServerError).WithRaw(err))
		return
	}
	monitor.RecordTrimmedMessages(removed)

	if systemTokens+historyTokens > prof.InputTokenLimit {
		lg.Error("context exceeds model input limit even after trimming",
			zap.Int("system_tokens", systemTokens),
			zap.Int("history_tokens", historyTokens),
			zap.Int("input_limit", prof.InputTokenLimit))
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.Errorf("Request content exceeds model's input token limit (%d tokens) even after history trimming", prof.InputTokenLimit),
			relaymodel.ErrCodeContextTooLarge, http.StatusRequestEntityTooLarge))
		return
	}

	decision := r.coordinator.Decide(c, systemPrompt, history, prof, req.Model)

	genConfig, err := buildGenerationConfig(&req)
	if err != nil {
		respondWithError(c, relaymodel.ErrorWrapper(
			errors.Wrap(err, "Invalid generation config provided"),
			relaymodel.ErrCodeInvalidGenerationConfig, http.StatusBadRequest))
		return
	}

	promptTokens, err := count(c, decision.ContentToSend)
	if err != nil {
		// Degrade to the trimmed estimate rather than failing the request.
		promptTokens = historyTokens
		if !decision.UsedCache() {
			promptTokens += systemTokens
		}
		lg.Warn("final prompt token count failed, using trimmed estimate",
			zap.Int("prompt_tokens", promptTokens), zap.Error(err))
	}

	genReq := &gemini.GenerateRequest{
		Contents:         decision.ContentToSend,
		GenerationConfig: genConfig,
		CachedContent:    decision.CacheName,
	}

	if req.Stream {
		r.relayStream(c, prof, &req, genReq, promptTokens, decision)
		return
	}
	r.relayBatch(c, prof, &req, genReq, promptTokens, decision, count)
}

func (r *Relay) relayBatch(c *gin.Context, prof profile.ModelProfile, req *dto.ChatRequest, genReq *gemini.GenerateRequest, promptTokens int, decision cache.Decision, count countFunc) {
	lg := gmw.GetLogger(c)
	dispatchCtx := c.Request.Context()

	var resp *gemini.GenerateResponse
	err := r.policy.Do(dispatchCtx, lg, func() error {
		var opErr error
		resp, opErr = r.client.GenerateContent(dispatchCtx, prof.APIPath, genReq)
		return opErr
	}, gemini.IsRetryable)
	if err != nil {
		r.forgetOnRejection(err, decision)
		respondWithError(c, classifyDispatchError(err))
		return
	}

	usage := assembleUsage(c, count, resp, promptTokens, decision.CachedTokens, decision.UsedCache())
	lg.Info("plan generated",
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("total_tokens", usage.TotalTokens))

	c.JSON(http.StatusOK, dto.ChatResponse{
		Message: dto.Message{Role: dto.RoleModel, Content: resp.Text()},
		Model:   req.Model,
		Usage:   usage,
	})
}

func (r *Relay) relayStream(c *gin.Context, prof profile.ModelProfile, req *dto.ChatRequest, genReq *gemini.GenerateRequest, promptTokens int, decision cache.Decision) {
	lg := gmw.GetLogger(c)
	// Client disconnects cancel this context, which tears down the upstream
	// stream as well.
	dispatchCtx := c.Request.Context()

	var stream *gemini.StreamReader
	err := r.policy.Do(dispatchCtx, lg, func() error {
		var opErr error
		stream, opErr = r.client.GenerateContentStream(dispatchCtx, prof.APIPath, genReq)
		return opErr
	}, gemini.IsRetryable)
	if err != nil {
		r.forgetOnRejection(err, decision)
		respondWithError(c, classifyDispatchError(err))
		return
	}
	defer stream.Close()

	common.SetEventStreamHeaders(c)
	acc := streaming.NewAccumulator(promptTokens, decision.CachedTokens)

	for {
		chunk, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			// Headers are already out; all we can do is stop and log.
			lg.Warn("stream interrupted", zap.Error(recvErr))
			break
		}
		if text, ok := acc.Consume(chunk); ok {
			if _, writeErr := fmt.Fprint(c.Writer, text); writeErr != nil {
				lg.Warn("client write failed, aborting stream", zap.Error(writeErr))
				break
			}
			c.Writer.Flush()
			monitor.RecordStreamChunk()
		}
	}

	acc.LogFinal(lg)
}

// forgetOnRejection invalidates the memoized cache entry when the upstream
// rejected a request that referenced it, so the next request revalidates.
func (r *Relay) forgetOnRejection(err error, decision cache.Decision) {
	if decision.UsedCache() && gemini.IsInvalidArgument(err) {
		r.coordinator.Forget(decision.Key)
	}
}
