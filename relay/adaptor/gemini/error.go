package gemini

import (
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// APIError is a non-2xx reply from the Gemini API, carrying the upstream
// status code and the gRPC-style status string from the error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// IsNotFound reports whether err is an upstream 404, used to distinguish a
// cache miss from a cache-service failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.Status == "NOT_FOUND"
	}
	return false
}

// IsRateLimited reports whether err is upstream throttling or quota exhaustion.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}

// IsInvalidArgument reports whether err is an upstream rejection of the
// request itself rather than a transient failure.
func IsInvalidArgument(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadRequest || apiErr.Status == "INVALID_ARGUMENT"
	}
	return false
}

// IsRetryable reports whether a dispatch attempt that failed with err is worth
// retrying. Client-side rejections (4xx) never are; network failures and
// upstream 5xx replies are.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	// Transport-level failure without an upstream reply.
	return true
}
