// Package similarity implements the embedding-based classification strategy:
// category keyword text and per-page extracted text are embedded, pages are
// assigned the best-matching category by cosine similarity, gated by a
// threshold.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/doctriage/internal/categories"
	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/providers"
)

// DefaultThreshold is the similarity below which a page is left Unclassified.
const DefaultThreshold = 0.4

// Classifier assigns category labels to page texts by embedding similarity.
// Page numbers are 0-indexed.
type Classifier struct {
	registry  *categories.Registry
	embedder  providers.Embedder
	threshold float64
}

// NewClassifier creates a similarity classifier.
// The threshold gates the label only; the score field always carries the
// best similarity regardless of the gating outcome.
func NewClassifier(registry *categories.Registry, embedder providers.Embedder, threshold float64) (*Classifier, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("category registry is empty")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1], got %v", threshold)
	}
	return &Classifier{
		registry:  registry,
		embedder:  embedder,
		threshold: threshold,
	}, nil
}

// Classify produces one PageClassification per page text, in order.
// Embedding failures abort the run; a page index is never skipped.
func (c *Classifier) Classify(ctx context.Context, pageTexts []string) (*classify.ClassificationSet, error) {
	categoryVectors, err := c.embedCategories(ctx)
	if err != nil {
		return nil, err
	}

	set := classify.NewClassificationSet(classify.OriginZero)

	for pageNum, text := range pageTexts {
		if strings.TrimSpace(text) == "" {
			// Defined edge case, not an error: no representation, no scores.
			set.Append(classify.PageClassification{
				PageNumber: pageNum,
				Label:      classify.Unclassified,
				Score:      0.0,
			})
			slog.Debug("page has no extractable text", "page", pageNum)
			continue
		}

		pageVector, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return nil, &classify.ProviderError{Provider: c.embedder.Name(), Err: err}
		}
		if len(pageVector) == 0 || isZero(pageVector) {
			set.Append(classify.PageClassification{
				PageNumber: pageNum,
				Label:      classify.Unclassified,
				Score:      0.0,
			})
			slog.Debug("page embedding is degenerate", "page", pageNum)
			continue
		}

		set.Append(c.classifyVector(pageNum, pageVector, categoryVectors))
	}

	return set, nil
}

// embedCategories computes one embedding per category from its space-joined
// keyword list. Computed once per run, reused across all pages.
func (c *Classifier) embedCategories(ctx context.Context) ([][]float64, error) {
	cats := c.registry.Categories()
	vectors := make([][]float64, len(cats))
	for i, cat := range cats {
		v, err := c.embedder.Embed(ctx, cat.KeywordText())
		if err != nil {
			return nil, &classify.ProviderError{Provider: c.embedder.Name(), Err: err}
		}
		vectors[i] = v
	}
	return vectors, nil
}

// classifyVector scores one page vector against every category and applies
// threshold gating to pick the label.
func (c *Classifier) classifyVector(pageNum int, pageVector []float64, categoryVectors [][]float64) classify.PageClassification {
	cats := c.registry.Categories()

	allScores := make([]classify.CategoryScore, len(cats))
	bestIdx := 0
	for i, cat := range cats {
		score := Cosine(pageVector, categoryVectors[i])
		allScores[i] = classify.CategoryScore{Category: cat.Name, Score: score}
		if score > allScores[bestIdx].Score {
			bestIdx = i
		}
	}

	best := allScores[bestIdx]
	label := classify.Unclassified
	if best.Score >= c.threshold {
		label = best.Category
	}

	return classify.PageClassification{
		PageNumber: pageNum,
		Label:      label,
		Score:      best.Score,
		AllScores:  allScores,
	}
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
