// Package vision implements the prompt-based classification strategy: all
// page images go to a vision-capable model in one request, the structured
// response assigns one label per page, and per-page confidence is derived
// from token log-probabilities.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/providers"
)

// Classifier assigns category labels to page images via a single batched
// vision completion. Page numbers are 1-indexed.
type Classifier struct {
	registry *categories.Registry
	client   providers.VisionClient
	model    string
}

// NewClassifier creates a vision classifier. Model may be empty to use the
// client's default.
func NewClassifier(registry *categories.Registry, client providers.VisionClient, model string) (*Classifier, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("category registry is empty")
	}
	if client == nil {
		return nil, fmt.Errorf("vision client is required")
	}
	return &Classifier{
		registry: registry,
		client:   client,
		model:    model,
	}, nil
}

// Classify issues exactly one completion request covering all page images
// and returns the per-page labels plus a confidence report. A malformed or
// unvalidatable response is fatal; no retry happens here.
func (c *Classifier) Classify(ctx context.Context, pageImages [][]byte) (*classify.ClassificationSet, *classify.ConfidenceReport, error) {
	if len(pageImages) == 0 {
		return nil, nil, fmt.Errorf("no page images to classify")
	}

	schema, err := ResponseSchema(c.registry)
	if err != nil {
		return nil, nil, err
	}

	userText, err := CategoriesPayload(c.registry)
	if err != nil {
		return nil, nil, err
	}

	result, err := c.client.Complete(ctx, &providers.VisionRequest{
		SystemPrompt: SystemPrompt(),
		UserText:     userText,
		Images:       pageImages,
		Model:        c.model,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: schema,
		},
		Logprobs: true,
	})
	if err != nil {
		return nil, nil, &classify.ProviderError{Provider: c.client.Name(), Err: err}
	}

	var parsed response
	if err := json.Unmarshal(result.ParsedJSON, &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to decode classification response: %w", err)
	}

	slog.Debug("vision classification complete",
		"pages_sent", len(pageImages),
		"labels_returned", len(parsed.PageLabels),
		"completion_tokens", result.CompletionTokens,
		"model", result.ModelUsed,
	)

	perPage := attributeConfidence(result.Tokens, parsed.PageLabels)

	set := classify.NewClassificationSet(classify.OriginOne)
	for _, l := range parsed.PageLabels {
		conf := perPage[l.PageNumber]
		score := 0.0
		if conf.Known {
			score = conf.Value
		}
		set.Append(classify.PageClassification{
			PageNumber: l.PageNumber,
			Label:      l.Label,
			Score:      score,
		})
	}

	return set, classify.NewConfidenceReport(perPage), nil
}
