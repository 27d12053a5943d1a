package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/config"
	"github.com/jackzampolin/doctriage/internal/eval"
	"github.com/jackzampolin/doctriage/internal/home"
	"github.com/jackzampolin/doctriage/internal/output"
	"github.com/jackzampolin/doctriage/internal/pipeline"
	"github.com/jackzampolin/doctriage/internal/providers"
	"github.com/jackzampolin/doctriage/internal/raster"
	"github.com/jackzampolin/doctriage/internal/result"
)

var (
	expectedPath string
	outPath      string
	threshold    float64
	visionModel  string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the pages of a PDF document",
}

var classifySimilarityCmd = &cobra.Command{
	Use:   "similarity <document.pdf>",
	Short: "Classify pages by embedding similarity (0-indexed pages)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, registry, err := loadSetup()
		if err != nil {
			return err
		}

		expected, err := loadExpected(classify.OriginZero)
		if err != nil {
			return err
		}

		t := cfg.Classify.Threshold
		if cmd.Flags().Changed("threshold") {
			t = threshold
		}

		p := &pipeline.Similarity{
			Registry: registry,
			Layout: providers.NewMistralLayoutClient(providers.MistralLayoutConfig{
				APIKey: config.ResolveEnvVars(cfg.Providers.Mistral.APIKey),
				Model:  cfg.Providers.Mistral.Model,
			}),
			Embedder: providers.NewOpenAIEmbedder(providers.OpenAIEmbedderConfig{
				APIKey: config.ResolveEnvVars(cfg.Providers.OpenAI.APIKey),
				Model:  cfg.Providers.OpenAI.Model,
			}),
			Threshold: t,
		}

		rec, err := p.Run(cmd.Context(), args[0], expected)
		if err != nil {
			return err
		}
		return finishRun(rec, "similarity")
	},
}

var classifyVisionCmd = &cobra.Command{
	Use:   "vision <document.pdf>",
	Short: "Classify pages with a vision model (1-indexed pages)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, registry, err := loadSetup()
		if err != nil {
			return err
		}

		expected, err := loadExpected(classify.OriginOne)
		if err != nil {
			return err
		}

		model := cfg.Providers.OpenRouter.Model
		if visionModel != "" {
			model = visionModel
		}

		p := &pipeline.Vision{
			Registry: registry,
			Renderer: raster.NewRenderer(cfg.Raster.DPI),
			Client: providers.NewOpenRouterClient(providers.OpenRouterConfig{
				APIKey:       config.ResolveEnvVars(cfg.Providers.OpenRouter.APIKey),
				DefaultModel: model,
			}),
			Model: model,
		}

		rec, err := p.Run(cmd.Context(), args[0], expected)
		if err != nil {
			return err
		}
		return finishRun(rec, "vision")
	},
}

// loadSetup loads configuration and builds the category registry.
func loadSetup() (*config.Config, *categories.Registry, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cm.OnChange(func(*config.Config) {
		slog.Info("configuration reloaded; changes apply to the next run")
	})
	cfg := cm.Get()

	registry, err := categories.NewRegistry(cfg.Classify.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid category configuration: %w", err)
	}
	return cfg, registry, nil
}

// loadExpected reads the human-labeled expected set and checks its indexing
// origin against the strategy's convention.
func loadExpected(origin classify.IndexOrigin) (*classify.ClassificationSet, error) {
	set, err := eval.LoadExpected(expectedPath)
	if err != nil {
		return nil, err
	}
	if set.Origin != origin {
		return nil, fmt.Errorf("expected set is %d-indexed but this strategy requires %d-indexed page numbers",
			set.Origin, origin)
	}
	return set, nil
}

// finishRun prints the record and persists it only after a fully successful
// run.
func finishRun(rec *result.Record, strategy string) error {
	if err := output.Print(rec); err != nil {
		return err
	}

	path := outPath
	if path == "" {
		d, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := d.EnsureExists(); err != nil {
			return err
		}
		path = d.ResultPath(strategy)
	}
	if err := rec.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "result written to %s\n", path)
	return nil
}

func init() {
	classifyCmd.PersistentFlags().StringVarP(
		&expectedPath, "expected", "e", "", "expected label set (yaml/json, required)",
	)
	classifyCmd.PersistentFlags().StringVar(
		&outPath, "out", "", "result record path (default: <home>/results/<strategy>.json)",
	)
	classifyCmd.MarkPersistentFlagRequired("expected")

	classifySimilarityCmd.Flags().Float64VarP(
		&threshold, "threshold", "t", 0.4, "similarity threshold gating the label",
	)
	classifyVisionCmd.Flags().StringVarP(
		&visionModel, "model", "m", "", "vision model override (default from config)",
	)

	classifyCmd.AddCommand(classifySimilarityCmd)
	classifyCmd.AddCommand(classifyVisionCmd)
}
