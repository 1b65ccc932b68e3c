package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/planner-api/dto"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	"github.com/gamenight/planner-api/relay/cache"
	"github.com/gamenight/planner-api/relay/profile"
	"github.com/gamenight/planner-api/relay/retry"
)

type fakeClient struct {
	countTokens     func(ctx context.Context, model string, contents []gemini.Content) (int, error)
	generateContent func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
	generateStream  func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.StreamReader, error)

	generateCalls int
}

func (f *fakeClient) CountTokens(ctx context.Context, model string, contents []gemini.Content) (int, error) {
	if f.countTokens == nil {
		return 10, nil
	}
	return f.countTokens(ctx, model, contents)
}

func (f *fakeClient) GenerateContent(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	f.generateCalls++
	return f.generateContent(ctx, model, req)
}

func (f *fakeClient) GenerateContentStream(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.StreamReader, error) {
	f.generateCalls++
	return f.generateStream(ctx, model, req)
}

func (f *fakeClient) GetCachedContent(ctx context.Context, name string) (*gemini.CachedContent, error) {
	return nil, &gemini.APIError{StatusCode: 404, Status: "NOT_FOUND"}
}

func (f *fakeClient) CreateCachedContent(ctx context.Context, cc *gemini.CachedContent) (*gemini.CachedContent, error) {
	return cc, nil
}

var _ gemini.Client = (*fakeClient)(nil)

func testRegistry(limit int) *profile.Registry {
	return profile.NewRegistryWithProfiles(map[string]profile.ModelProfile{
		"gemini-1.5-flash": {
			APIPath:         "models/gemini-1.5-flash-latest",
			InputTokenLimit: limit,
		},
	})
}

func serveRequest(t *testing.T, client *fakeClient, limit int, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	relay := NewRelay(
		testRegistry(limit),
		client,
		cache.NewCoordinatorWith(client, 1<<30, time.Hour),
		retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	)
	server := gin.New()
	server.POST("/plan-event", relay.PlanEvent)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/plan-event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)
	return w
}

func batchResponse(text string) *gemini.GenerateResponse {
	return &gemini.GenerateResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Role: "model", Parts: []gemini.Part{{Text: text}}}},
		},
		UsageMetadata: &gemini.UsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}
}

func TestPlanEvent(t *testing.T) {
	validBody := `{"messages": [{"role": "user", "content": "plan a chess night"}]}`

	t.Run("batch success", func(t *testing.T) {
		client := &fakeClient{
			generateContent: func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
				require.Equal(t, "models/gemini-1.5-flash-latest", model)
				// System prompt plus the single history message.
				require.Len(t, req.Contents, 2)
				require.NotNil(t, req.GenerationConfig)
				return batchResponse("## Event: Chess Night"), nil
			},
		}
		w := serveRequest(t, client, 1_000_000, validBody)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, dto.RoleModel, resp.Message.Role)
		require.Equal(t, "## Event: Chess Night", resp.Message.Content)
		require.Equal(t, "gemini-1.5-flash", resp.Model)
		require.Equal(t, 15, resp.Usage.TotalTokens)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		w := serveRequest(t, &fakeClient{}, 1_000_000, `{"messages": []}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid role rejected by binding", func(t *testing.T) {
		w := serveRequest(t, &fakeClient{}, 1_000_000,
			`{"messages": [{"role": "system", "content": "x"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown model lists valid ones", func(t *testing.T) {
		w := serveRequest(t, &fakeClient{}, 1_000_000,
			`{"model": "gpt-4o", "messages": [{"role": "user", "content": "hi"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Invalid model")
		require.Contains(t, w.Body.String(), "gemini-1.5-flash")
	})

	t.Run("invalid temperature rejected", func(t *testing.T) {
		w := serveRequest(t, &fakeClient{}, 1_000_000,
			`{"temperature": 3.0, "messages": [{"role": "user", "content": "hi"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized context returns 413", func(t *testing.T) {
		// Every count comes back 10, so system+history can never fit 15.
		w := serveRequest(t, &fakeClient{}, 15, validBody)
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		require.Contains(t, w.Body.String(), "context_too_large")
	})

	t.Run("token count failure returns 500", func(t *testing.T) {
		client := &fakeClient{
			countTokens: func(ctx context.Context, model string, contents []gemini.Content) (int, error) {
				return 0, &gemini.APIError{StatusCode: 503, Status: "UNAVAILABLE"}
			},
		}
		w := serveRequest(t, client, 1_000_000, validBody)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Body.String(), "token_count_failed")
	})

	t.Run("upstream rate limit maps to 429 without retry", func(t *testing.T) {
		client := &fakeClient{
			generateContent: func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
				return nil, &gemini.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}
			},
		}
		w := serveRequest(t, client, 1_000_000, validBody)
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		require.Equal(t, 1, client.generateCalls)
	})

	t.Run("upstream invalid argument maps to 400", func(t *testing.T) {
		client := &fakeClient{
			generateContent: func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
				return nil, &gemini.APIError{StatusCode: 400, Status: "INVALID_ARGUMENT", Message: "bad contents"}
			},
		}
		w := serveRequest(t, client, 1_000_000, validBody)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "bad contents")
		require.Equal(t, 1, client.generateCalls)
	})

	t.Run("persistent upstream failure exhausts retries to 503", func(t *testing.T) {
		client := &fakeClient{
			generateContent: func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
				return nil, &gemini.APIError{StatusCode: 500, Status: "INTERNAL"}
			},
		}
		w := serveRequest(t, client, 1_000_000, validBody)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Equal(t, 2, client.generateCalls)
		require.Contains(t, w.Body.String(), "upstream_unavailable")
	})

	t.Run("stream relays text chunks", func(t *testing.T) {
		payload := "data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"## Event:\"}]}}]}\n\n" +
			"data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \" Game Night\"}]}}], \"usageMetadata\": {\"totalTokenCount\": 30}}\n\n"
		client := &fakeClient{
			generateStream: func(ctx context.Context, model string, req *gemini.GenerateRequest) (*gemini.StreamReader, error) {
				return gemini.NewStreamReader(io.NopCloser(strings.NewReader(payload))), nil
			},
		}
		streamBody := `{"stream": true, "messages": [{"role": "user", "content": "plan a game night"}]}`
		w := serveRequest(t, client, 1_000_000, streamBody)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		require.Equal(t, "## Event: Game Night", w.Body.String())
	})
}
