package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/gamenight/planner-api/common/helper"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	relaymodel "github.com/gamenight/planner-api/relay/model"
	"github.com/gamenight/planner-api/relay/retry"
)

// respondWithError writes the client-facing error and logs the full cause.
// Client messages stay short and categorized; raw upstream internals are only
// visible in logs.
func respondWithError(c *gin.Context, errResp *relaymodel.ErrorWithStatusCode) {
	lg := gmw.GetLogger(c)
	if errResp.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed",
			zap.Int("status_code", errResp.StatusCode),
			zap.Any("code", errResp.Code),
			zap.Error(errResp.RawError))
	} else {
		lg.Warn("request rejected",
			zap.Int("status_code", errResp.StatusCode),
			zap.Any("code", errResp.Code),
			zap.Error(errResp.RawError))
	}

	errResp.Error.Message = helper.MessageWithRequestId(errResp.Error.Message, c.GetString(helper.RequestIdKey))
	c.JSON(errResp.StatusCode, gin.H{"error": errResp.Error})
}

// classifyDispatchError maps a failed upstream dispatch into the error
// taxonomy. Only post-retry failures reach this point.
func classifyDispatchError(err error) *relaymodel.ErrorWithStatusCode {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return relaymodel.ErrorWrapper(
			errors.New("AI service unavailable after retries"),
			relaymodel.ErrCodeUpstreamUnavailable, http.StatusServiceUnavailable).WithRaw(err)
	}
	if gemini.IsRateLimited(err) {
		return relaymodel.ErrorWrapper(
			errors.New("Rate limit hit or resource exhausted"),
			relaymodel.ErrCodeUpstreamRateLimited, http.StatusTooManyRequests).WithRaw(err)
	}
	if gemini.IsInvalidArgument(err) {
		var apiErr *gemini.APIError
		message := "Invalid request to AI service"
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = "Invalid request to AI service: " + apiErr.Message
		}
		return relaymodel.ErrorWrapper(
			errors.New(message),
			relaymodel.ErrCodeUpstreamInvalidArgument, http.StatusBadRequest).WithRaw(err)
	}
	return relaymodel.ErrorWrapper(
		errors.New("An error occurred with the AI service"),
		relaymodel.ErrCodeInternal, http.StatusInternalServerError).WithRaw(err)
}
