package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIEmbedderName         = "openai"
	openAIDefaultEmbedderModel = "text-embedding-3-small"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI embedding client.
type OpenAIEmbedderConfig struct {
	APIKey     string
	Model      string        // "text-embedding-3-small" (default) or "text-embedding-3-large"
	MaxRetries int           // Retry attempts for transient failures (default: 3)
	RetryDelay time.Duration // Base retry delay (default: 1s)
	Timeout    time.Duration // HTTP timeout (default: 60s)
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIEmbedder implements Embedder using the official OpenAI SDK.
type OpenAIEmbedder struct {
	model      string
	maxRetries int
	retryDelay time.Duration
	client     openai.Client
}

// NewOpenAIEmbedder creates a new OpenAI embedding client.
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) *OpenAIEmbedder {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultEmbedderModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// SDK-level retries are disabled; retry-go below owns backoff so the
		// attempt budget is not multiplied.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEmbedder{
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (e *OpenAIEmbedder) Name() string {
	return OpenAIEmbedderName
}

// Model returns the configured embedding model.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed returns the embedding vector for the given text.
// Empty input yields an empty vector without a provider call; the
// classifier treats that as the empty-representation edge case.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var vector []float64
	err := retry.Do(
		func() error {
			resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
				Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
				Model: openai.EmbeddingModel(e.model),
			})
			if err != nil {
				return err
			}
			if len(resp.Data) == 0 {
				return retry.Unrecoverable(fmt.Errorf("openai returned no embedding data"))
			}
			vector = resp.Data[0].Embedding
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.maxRetries)),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransientOpenAIError),
	)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}

	return vector, nil
}

// isTransientOpenAIError reports whether an SDK error is worth retrying:
// rate limits and server-side failures only. Auth and validation errors
// fail immediately.
func isTransientOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return apiErr.StatusCode >= 500
	}
	// Network-level errors without an API status are transient.
	return true
}

// Verify interface
var _ Embedder = (*OpenAIEmbedder)(nil)
