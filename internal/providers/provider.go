package providers

import (
	"context"
	"encoding/json"
	"time"
)

// Embedder generates a fixed-dimensionality embedding vector for a text.
// Implementations must return a non-empty vector for non-empty input.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// VisionClient sends one multimodal chat completion covering all pages of a
// document and returns the structured response plus token log-probabilities.
type VisionClient interface {
	// Complete sends a single vision completion request.
	Complete(ctx context.Context, req *VisionRequest) (*VisionResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// LayoutProvider extracts per-page text from raw document bytes.
type LayoutProvider interface {
	// ExtractPages returns one text per document page, in page order.
	ExtractPages(ctx context.Context, document []byte) ([]string, error)

	// Name returns the provider identifier (e.g., "mistral").
	Name() string
}

// ResponseFormat specifies structured output format.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// VisionRequest is a single batched vision completion request.
type VisionRequest struct {
	SystemPrompt string
	UserText     string
	Images       [][]byte

	// Model selection (uses client default if empty)
	Model string

	// Generation parameters
	Temperature float64
	MaxTokens   int

	// Structured output
	ResponseFormat *ResponseFormat

	// Logprobs requests token log-probabilities with the completion.
	Logprobs bool

	// Request tracking
	RequestID string
}

// TokenLogprob is one completion token with its log-probability.
type TokenLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// VisionResult is the complete response from a vision completion call.
type VisionResult struct {
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Parsed and validated if ResponseFormat was set
	Tokens     []TokenLogprob  `json:"tokens,omitempty"`      // Present if Logprobs was requested and returned

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
}
