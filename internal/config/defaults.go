package config

import (
	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify/similarity"
	"github.com/jackzampolin/doctriage/internal/raster"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey: "${OPENAI_API_KEY}",
				Model:  "text-embedding-3-small",
			},
			OpenRouter: OpenRouterConfig{
				APIKey: "${OPENROUTER_API_KEY}",
				Model:  "openai/gpt-4o",
			},
			Mistral: MistralConfig{
				APIKey: "${MISTRAL_API_KEY}",
				Model:  "mistral-ocr-latest",
			},
		},
		Classify: ClassifyConfig{
			Threshold:  similarity.DefaultThreshold,
			Categories: categories.Defaults(),
		},
		Raster: RasterConfig{
			DPI: raster.DefaultDPI,
		},
	}
}
