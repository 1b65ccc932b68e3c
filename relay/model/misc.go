package model

// Error is the client-facing error shape. RawError keeps the original cause
// for diagnostics without leaking upstream internals to clients.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    any    `json:"code"`
	// RawError preserves the original upstream or internal error for diagnostics.
	// Omitted from JSON to avoid leaking provider internals.
	RawError error `json:"-"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int `json:"status_code"`
}

// Error kinds carried in Error.Code. The controller maps each kind to an HTTP
// status; everything else is treated as an internal error.
const (
	ErrCodeInvalidRequest          = "invalid_request"
	ErrCodeInvalidModel            = "invalid_model"
	ErrCodeTokenCountFailed        = "token_count_failed"
	ErrCodeContextTooLarge         = "context_too_large"
	ErrCodeInvalidGenerationConfig = "invalid_generation_config"
	ErrCodeUpstreamUnavailable     = "upstream_unavailable"
	ErrCodeUpstreamRateLimited     = "upstream_rate_limited"
	ErrCodeUpstreamInvalidArgument = "upstream_invalid_argument"
	ErrCodeInternal                = "internal_error"
)

// WithRaw attaches the underlying cause for logging while keeping the
// client-facing message unchanged.
func (e *ErrorWithStatusCode) WithRaw(err error) *ErrorWithStatusCode {
	e.RawError = err
	return e
}

// ErrorWrapper creates an error response with the given kind and status code.
func ErrorWrapper(err error, code string, statusCode int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message:  err.Error(),
			Type:     "planner_api_error",
			Code:     code,
			RawError: err,
		},
		StatusCode: statusCode,
	}
}
