// Package pipeline wires one strategy end to end: extract or render pages,
// classify, evaluate against the expected set, and assemble the result
// record. Nothing is persisted here; the caller saves the record only after
// the whole run succeeds.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/classify/similarity"
	"github.com/jackzampolin/doctriage/internal/classify/vision"
	"github.com/jackzampolin/doctriage/internal/eval"
	"github.com/jackzampolin/doctriage/internal/providers"
	"github.com/jackzampolin/doctriage/internal/result"
)

// Similarity runs the embedding-similarity strategy over one document.
type Similarity struct {
	Registry  *categories.Registry
	Layout    providers.LayoutProvider
	Embedder  providers.Embedder
	Threshold float64
}

// Run classifies the document at pdfPath and evaluates against expected.
// The expected set must be 0-indexed.
func (p *Similarity) Run(ctx context.Context, pdfPath string, expected *classify.ClassificationSet) (*result.Record, error) {
	start := time.Now()

	document, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	texts, err := p.Layout.ExtractPages(ctx, document)
	if err != nil {
		return nil, &classify.ProviderError{Provider: p.Layout.Name(), Err: err}
	}
	slog.Info("extracted page texts", "pages", len(texts), "provider", p.Layout.Name())

	classifier, err := similarity.NewClassifier(p.Registry, p.Embedder, p.Threshold)
	if err != nil {
		return nil, err
	}

	set, err := classifier.Classify(ctx, texts)
	if err != nil {
		return nil, err
	}

	accuracy, err := eval.Evaluate(expected, set)
	if err != nil {
		return nil, err
	}
	slog.Info("similarity run complete", "pages", set.Len(), "accuracy", accuracy.Overall)

	return result.Assemble(set, accuracy, nil, time.Since(start)), nil
}

// Vision runs the vision-model strategy over one document.
type Vision struct {
	Registry *categories.Registry
	Renderer PageRenderer
	Client   providers.VisionClient
	Model    string
}

// PageRenderer renders every page of a PDF to an image.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath string) ([][]byte, error)
}

// Run classifies the document at pdfPath and evaluates against expected.
// The expected set must be 1-indexed.
func (p *Vision) Run(ctx context.Context, pdfPath string, expected *classify.ClassificationSet) (*result.Record, error) {
	start := time.Now()

	images, err := p.Renderer.RenderPages(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}
	slog.Info("rendered page images", "pages", len(images))

	classifier, err := vision.NewClassifier(p.Registry, p.Client, p.Model)
	if err != nil {
		return nil, err
	}

	set, confidence, err := classifier.Classify(ctx, images)
	if err != nil {
		return nil, err
	}

	// The model must label every page it was sent. A response that drops a
	// page would otherwise produce a truncated record with accuracy computed
	// over the returned pages only.
	for n := 1; n <= len(images); n++ {
		if _, err := set.ByPage(n); err != nil {
			return nil, fmt.Errorf("model response is missing pages: %w", err)
		}
	}
	if set.Len() != len(images) {
		return nil, fmt.Errorf("model labeled %d pages but %d were sent", set.Len(), len(images))
	}

	accuracy, err := eval.Evaluate(expected, set)
	if err != nil {
		return nil, err
	}
	slog.Info("vision run complete",
		"pages", set.Len(),
		"accuracy", accuracy.Overall,
		"confidence", confidence.Overall,
	)

	return result.Assemble(set, accuracy, confidence, time.Since(start)), nil
}
