package gemini

// Wire types for the Gemini generative language REST API.

// Part is a single segment of content. Only text parts are produced by this
// gateway.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is the atomic role+parts block sent to or cached by the upstream
// model.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig carries the sampling parameters for a generate call.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GenerateRequest is the body of a generateContent / streamGenerateContent
// call. CachedContent references a server-side cache entry by name; when set,
// the cached contents are implicit and must not be repeated in Contents.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	CachedContent    string            `json:"cachedContent,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// UsageMetadata is the upstream token accounting block.
type UsageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount    int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount         int `json:"totalTokenCount,omitempty"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
}

// GenerateResponse is a full batch response or a single streamed chunk.
type GenerateResponse struct {
	Candidates    []Candidate    `json:"candidates,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// Text returns the first candidate's concatenated text parts.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var text string
	for _, part := range r.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}

type countTokensRequest struct {
	Contents []Content `json:"contents"`
}

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// CachedContent mirrors the upstream cachedContents resource. TTL is the
// create-time duration in the "3600s" wire format.
type CachedContent struct {
	Name          string         `json:"name,omitempty"`
	Model         string         `json:"model,omitempty"`
	Contents      []Content      `json:"contents,omitempty"`
	TTL           string         `json:"ttl,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// TokenCount returns the entry's total token count, or fallback when the
// upstream omitted usage metadata.
func (c *CachedContent) TokenCount(fallback int) int {
	if c != nil && c.UsageMetadata != nil && c.UsageMetadata.TotalTokenCount > 0 {
		return c.UsageMetadata.TotalTokenCount
	}
	return fallback
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
