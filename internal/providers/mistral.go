package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	MistralLayoutName    = "mistral"
	MistralLayoutBaseURL = "https://api.mistral.ai/v1"
	MistralLayoutModel   = "mistral-ocr-latest"
)

// MistralLayoutConfig holds configuration for the Mistral layout client.
type MistralLayoutConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// MistralLayoutClient implements LayoutProvider using the Mistral OCR API.
// One call per document; the response carries per-page markdown text.
type MistralLayoutClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewMistralLayoutClient creates a new Mistral layout client.
func NewMistralLayoutClient(cfg MistralLayoutConfig) *MistralLayoutClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MistralLayoutBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralLayoutModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &MistralLayoutClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *MistralLayoutClient) Name() string {
	return MistralLayoutName
}

// ExtractPages extracts per-page text from raw PDF bytes.
// The returned slice is ordered by page index; a page with no recognizable
// text yields an empty string at its position, never a skipped index.
func (c *MistralLayoutClient) ExtractPages(ctx context.Context, document []byte) ([]string, error) {
	reqBody := mistralLayoutRequest{
		Model: c.model,
		Document: mistralDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document),
		},
	}

	resp, err := c.doRequest(ctx, "/ocr", reqBody)
	if err != nil {
		return nil, err
	}

	if len(resp.Pages) == 0 {
		return nil, fmt.Errorf("no pages in layout response")
	}

	// Place each page by its reported index. An index absent from the
	// response keeps its slot as an empty string; compacting would silently
	// renumber every page after the gap.
	maxIdx := 0
	for _, page := range resp.Pages {
		if page.Index < 0 {
			return nil, fmt.Errorf("negative page index %d in layout response", page.Index)
		}
		if page.Index > maxIdx {
			maxIdx = page.Index
		}
	}

	texts := make([]string, maxIdx+1)
	for _, page := range resp.Pages {
		texts[page.Index] = page.Markdown
	}
	return texts, nil
}

// doRequest makes an HTTP request to the Mistral API.
func (c *MistralLayoutClient) doRequest(ctx context.Context, path string, body any) (*mistralLayoutResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Try to extract error message from response
		var errResp mistralErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("Mistral layout error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("Mistral layout error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var layoutResp mistralLayoutResponse
	if err := json.Unmarshal(respBody, &layoutResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &layoutResp, nil
}

// Mistral OCR API types

type mistralLayoutRequest struct {
	Model    string          `json:"model"`
	Document mistralDocument `json:"document"`
	Pages    []int           `json:"pages,omitempty"`
}

type mistralDocument struct {
	Type        string `json:"type"` // "document_url"
	DocumentURL string `json:"document_url,omitempty"`
}

type mistralLayoutResponse struct {
	Model     string              `json:"model"`
	Pages     []mistralLayoutPage `json:"pages"`
	UsageInfo *mistralUsageInfo   `json:"usage_info,omitempty"`
}

type mistralLayoutPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type mistralUsageInfo struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes,omitempty"`
}

type mistralErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Verify interface
var _ LayoutProvider = (*MistralLayoutClient)(nil)
