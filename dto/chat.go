package dto

import (
	"github.com/Laisky/errors/v2"
)

// Message roles accepted from clients and produced by the upstream model.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

const (
	// DefaultModel is used when the client omits the model field.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTemperature matches the upstream default for plan generation.
	DefaultTemperature = 0.7
)

// Message represents a single message in the chat history.
type Message struct {
	Role    string `json:"role" binding:"required,oneof=user model"`
	Content string `json:"content" binding:"required,min=1"`
}

// ChatRequest defines the expected request body for the plan-event endpoint.
type ChatRequest struct {
	Messages    []Message `json:"messages" binding:"required,min=1,dive"`
	Model       string    `json:"model"`
	Temperature *float64  `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	MaxTokens   *int      `json:"max_tokens" binding:"omitempty,gte=1"`
	Stream      bool      `json:"stream"`
}

// ApplyDefaults fills in the model and temperature when the client omitted
// them. Call after binding succeeds.
func (r *ChatRequest) ApplyDefaults() {
	if r.Model == "" {
		r.Model = DefaultModel
	}
	if r.Temperature == nil {
		t := DefaultTemperature
		r.Temperature = &t
	}
}

// Validate re-checks the constraints the binding tags express, for callers
// that construct requests programmatically.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return errors.New("messages must contain at least one message")
	}
	for i, msg := range r.Messages {
		if msg.Role != RoleUser && msg.Role != RoleModel {
			return errors.Errorf("message %d has invalid role %q", i, msg.Role)
		}
		if msg.Content == "" {
			return errors.Errorf("message %d has empty content", i)
		}
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return errors.Errorf("temperature %v out of range [0, 2]", *r.Temperature)
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return errors.Errorf("max_tokens %d must be positive", *r.MaxTokens)
	}
	return nil
}

// UsageInfo holds token usage information for an API call.
type UsageInfo struct {
	PromptTokens int `json:"prompt_tokens"`
	// CandidatesTokens is the streamed completion tally (sum over chunks).
	CandidatesTokens *int `json:"candidates_tokens,omitempty"`
	// CompletionTokens is the batch completion count (single value).
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      int  `json:"total_tokens"`
	// CachedContentTokenCount is the token contribution of the cache entry, if one was used.
	CachedContentTokenCount *int `json:"cached_content_token_count,omitempty"`
}

// ChatResponse defines the response body for non-streaming requests.
type ChatResponse struct {
	Message Message   `json:"message"`
	Model   string    `json:"model"`
	Usage   UsageInfo `json:"usage"`
}
