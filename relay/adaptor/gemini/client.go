package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/gamenight/planner-api/common/config"
)

// Client is the upstream model capability consumed by the request pipeline.
// All methods are network-bound and fallible; implementations must honor the
// supplied context for cancellation.
type Client interface {
	CountTokens(ctx context.Context, model string, contents []Content) (int, error)
	GenerateContent(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error)
	GenerateContentStream(ctx context.Context, model string, req *GenerateRequest) (*StreamReader, error)
	GetCachedContent(ctx context.Context, name string) (*CachedContent, error)
	CreateCachedContent(ctx context.Context, cc *CachedContent) (*CachedContent, error)
}

// HTTPClient talks to the Gemini generative language REST API with key
// authentication.
type HTTPClient struct {
	baseURL    string
	version    string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client from the process configuration.
func NewHTTPClient() *HTTPClient {
	return NewHTTPClientWith(config.GeminiBaseURL, config.GeminiAPIKey)
}

// NewHTTPClientWith builds a client against an explicit endpoint, mainly for
// tests.
func NewHTTPClientWith(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: config.GeminiVersion,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Streaming responses outlive this timeout; it only bounds the
			// connection and header phase for them via ResponseHeaderTimeout.
			Timeout: time.Duration(config.UpstreamTimeoutSec) * time.Second,
		},
	}
}

func (c *HTTPClient) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s?key=%s", c.baseURL, c.version, path, url.QueryEscape(c.apiKey))
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = fmt.Sprintf("bad response status code %d", resp.StatusCode)
		return apiErr
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}

// CountTokens asks the upstream tokenizer for the token count of contents.
func (c *HTTPClient) CountTokens(ctx context.Context, model string, contents []Content) (int, error) {
	var out countTokensResponse
	path := fmt.Sprintf("%s:countTokens", modelPath(model))
	if err := c.do(ctx, http.MethodPost, path, &countTokensRequest{Contents: contents}, &out); err != nil {
		return 0, errors.Wrap(err, "count tokens")
	}
	return out.TotalTokens, nil
}

// GenerateContent performs a batch generation call.
func (c *HTTPClient) GenerateContent(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	var out GenerateResponse
	path := fmt.Sprintf("%s:generateContent", modelPath(model))
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, errors.Wrap(err, "generate content")
	}
	return &out, nil
}

// GenerateContentStream performs a streaming generation call. The caller owns
// the returned reader and must Close it.
func (c *HTTPClient) GenerateContentStream(ctx context.Context, model string, req *GenerateRequest) (*StreamReader, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request body")
	}
	path := fmt.Sprintf("%s:streamGenerateContent", modelPath(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path)+"&alt=sse", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	// A plain http.Client timeout would kill long streams mid-flight.
	streamClient := &http.Client{
		Transport: &http.Transport{
			ResponseHeaderTimeout: time.Duration(config.UpstreamTimeoutSec) * time.Second,
		},
	}
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "do stream request")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}
	return NewStreamReader(resp.Body), nil
}

// GetCachedContent fetches a cache entry by name. A miss is an APIError for
// which IsNotFound returns true.
func (c *HTTPClient) GetCachedContent(ctx context.Context, name string) (*CachedContent, error) {
	var out CachedContent
	path := fmt.Sprintf("cachedContents/%s", strings.TrimPrefix(name, "cachedContents/"))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, errors.Wrap(err, "get cached content")
	}
	return &out, nil
}

// CreateCachedContent registers a new server-side cache entry.
func (c *HTTPClient) CreateCachedContent(ctx context.Context, cc *CachedContent) (*CachedContent, error) {
	var out CachedContent
	if err := c.do(ctx, http.MethodPost, "cachedContents", cc, &out); err != nil {
		return nil, errors.Wrap(err, "create cached content")
	}
	return &out, nil
}

// modelPath normalizes a profile API path into the REST resource path.
// Profiles may carry either a bare model id or a "models/..." path.
func modelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
