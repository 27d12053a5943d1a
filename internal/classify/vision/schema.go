package vision

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
)

// ResponseSchema builds the JSON schema for the classification output.
// Labels are constrained to the registered category names plus the
// Unclassified sentinel, so an out-of-registry label fails validation
// before the response is used.
func ResponseSchema(registry *categories.Registry) (json.RawMessage, error) {
	labels := append(registry.Names(), classify.Unclassified)

	schema := map[string]any{
		"name":   "page_classification",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page_labels": map[string]any{
					"type":        "array",
					"description": "One entry per page, in page order",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"page_number": map[string]any{
								"type":        "integer",
								"description": "1-indexed page number",
							},
							"label": map[string]any{
								"type": "string",
								"enum": labels,
							},
						},
						"required":             []string{"page_number", "label"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"page_labels"},
			"additionalProperties": false,
		},
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}
	return raw, nil
}

// response is the parsed shape of the structured completion.
type response struct {
	PageLabels []pageLabel `json:"page_labels"`
}

type pageLabel struct {
	PageNumber int    `json:"page_number"`
	Label      string `json:"label"`
}
