package vision

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/doctriage/internal/categories"
)

//go:embed system.tmpl
var systemPrompt string

// SystemPrompt returns the fixed system instruction for page classification.
func SystemPrompt() string {
	return systemPrompt
}

// CategoriesPayload serializes the full registry (name, description,
// keywords) as the structured data block of the user message.
func CategoriesPayload(registry *categories.Registry) (string, error) {
	payload, err := json.MarshalIndent(registry.Categories(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize categories: %w", err)
	}
	return "Categories:\n" + string(payload), nil
}
