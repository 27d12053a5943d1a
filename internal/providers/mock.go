package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// MockEmbedder is an Embedder for testing. Vectors maps input text to the
// vector to return; texts with no entry fall back to DefaultVector.
type MockEmbedder struct {
	Vectors       map[string][]float64
	DefaultVector []float64
	ShouldFail    bool
	FailAfter     int // Fail after N requests (0 = never)
	Latency       time.Duration

	requestCount atomic.Int64
}

// NewMockEmbedder creates a mock embedder with an empty vector table.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Vectors: make(map[string][]float64),
	}
}

// Name returns the provider identifier.
func (e *MockEmbedder) Name() string {
	return "mock-embedder"
}

// Embed returns the configured vector for the text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	count := e.requestCount.Add(1)

	if e.ShouldFail {
		return nil, fmt.Errorf("mock embedder configured to fail")
	}
	if e.FailAfter > 0 && int(count) > e.FailAfter {
		return nil, fmt.Errorf("mock embedder failed after %d requests", e.FailAfter)
	}

	if e.Latency > 0 {
		select {
		case <-time.After(e.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if v, ok := e.Vectors[text]; ok {
		return v, nil
	}
	return e.DefaultVector, nil
}

// RequestCount returns the number of requests made.
func (e *MockEmbedder) RequestCount() int64 {
	return e.requestCount.Load()
}

// Verify interface
var _ Embedder = (*MockEmbedder)(nil)

// MockVisionClient is a VisionClient for testing.
type MockVisionClient struct {
	ResponseJSON json.RawMessage
	Tokens       []TokenLogprob
	ShouldFail   bool
	Latency      time.Duration

	// LastRequest captures the most recent request for assertions.
	LastRequest *VisionRequest

	requestCount atomic.Int64
}

// NewMockVisionClient creates a mock vision client.
func NewMockVisionClient() *MockVisionClient {
	return &MockVisionClient{}
}

// Name returns the client identifier.
func (c *MockVisionClient) Name() string {
	return "mock-vision"
}

// Complete returns the configured structured response.
func (c *MockVisionClient) Complete(ctx context.Context, req *VisionRequest) (*VisionResult, error) {
	count := c.requestCount.Add(1)
	c.LastRequest = req

	if c.ShouldFail {
		return nil, fmt.Errorf("mock vision client configured to fail")
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	result := &VisionResult{
		Content:   string(c.ResponseJSON),
		Tokens:    c.Tokens,
		Provider:  c.Name(),
		ModelUsed: req.Model,
		RequestID: fmt.Sprintf("mock-%d", count),
	}

	if req.ResponseFormat != nil && len(c.ResponseJSON) > 0 {
		parsed, err := parseStructuredJSON(string(c.ResponseJSON))
		if err != nil {
			return nil, fmt.Errorf("structured response unparsable: %w", err)
		}
		if err := validateStructuredJSON(req.ResponseFormat.JSONSchema, parsed); err != nil {
			return nil, err
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockVisionClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Verify interface
var _ VisionClient = (*MockVisionClient)(nil)

// MockLayoutProvider is a LayoutProvider for testing.
type MockLayoutProvider struct {
	PageTexts  []string
	ShouldFail bool

	requestCount atomic.Int64
}

// NewMockLayoutProvider creates a mock layout provider.
func NewMockLayoutProvider(pageTexts ...string) *MockLayoutProvider {
	return &MockLayoutProvider{PageTexts: pageTexts}
}

// Name returns the provider identifier.
func (p *MockLayoutProvider) Name() string {
	return "mock-layout"
}

// ExtractPages returns the configured page texts.
func (p *MockLayoutProvider) ExtractPages(ctx context.Context, document []byte) ([]string, error) {
	p.requestCount.Add(1)

	if p.ShouldFail {
		return nil, fmt.Errorf("mock layout provider configured to fail")
	}
	return p.PageTexts, nil
}

// RequestCount returns the number of requests made.
func (p *MockLayoutProvider) RequestCount() int64 {
	return p.requestCount.Load()
}

// Verify interface
var _ LayoutProvider = (*MockLayoutProvider)(nil)
