package config

import "github.com/jackzampolin/doctriage/internal/categories"

// Config is the full doctriage configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Classify  ClassifyConfig  `mapstructure:"classify" yaml:"classify"`
	Raster    RasterConfig    `mapstructure:"raster" yaml:"raster"`
}

// ProvidersConfig configures the external collaborators. API keys use
// ${ENV_VAR} syntax and are resolved at client construction; there is no
// process-wide credential state.
type ProvidersConfig struct {
	OpenAI     OpenAIConfig     `mapstructure:"openai" yaml:"openai"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter" yaml:"openrouter"`
	Mistral    MistralConfig    `mapstructure:"mistral" yaml:"mistral"`
}

// OpenAIConfig configures the embedding provider.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// OpenRouterConfig configures the vision completion provider.
type OpenRouterConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// MistralConfig configures the layout extraction provider.
type MistralConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// ClassifyConfig holds the classification parameters and category
// definitions.
type ClassifyConfig struct {
	Threshold  float64               `mapstructure:"threshold" yaml:"threshold"`
	Categories []categories.Category `mapstructure:"categories" yaml:"categories"`
}

// RasterConfig holds page rendering parameters.
type RasterConfig struct {
	DPI int `mapstructure:"dpi" yaml:"dpi"`
}
