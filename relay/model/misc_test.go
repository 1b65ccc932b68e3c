package model

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapper(t *testing.T) {
	cause := errors.New("boom")
	resp := ErrorWrapper(cause, ErrCodeInternal, http.StatusInternalServerError)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, ErrCodeInternal, resp.Code)
	require.Equal(t, "boom", resp.Message)
	require.Equal(t, cause, resp.RawError)
}

func TestErrorJSONOmitsRawError(t *testing.T) {
	resp := ErrorWrapper(errors.New("secret upstream detail"), ErrCodeUpstreamUnavailable, http.StatusServiceUnavailable)
	resp.WithRaw(errors.New("internal only"))

	payload, err := json.Marshal(resp.Error)
	require.NoError(t, err)
	require.NotContains(t, string(payload), "internal only")
	require.Contains(t, string(payload), ErrCodeUpstreamUnavailable)
}
