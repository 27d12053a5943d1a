// Package result packages a classification run into a persistable record.
// Pure data transformation; no decision logic.
package result

import (
	"sort"
	"strconv"
	"time"

	"github.com/jackzampolin/doctriage/internal/classify"
)

// OverallKey is the distinguished aggregate key in accuracy and confidence
// maps, alongside per-page-number keys.
const OverallKey = "overall"

// CategorySimilarity is one (category, score) pair in a page's diagnostic
// score list, sorted descending for display.
type CategorySimilarity struct {
	Category string  `json:"category" yaml:"category"`
	Score    float64 `json:"score" yaml:"score"`
}

// PageResult is one page's persisted classification entry.
type PageResult struct {
	PageNumber      int                  `json:"page_number" yaml:"page_number"`
	Classification  string               `json:"classification" yaml:"classification"`
	Similarity      float64              `json:"similarity" yaml:"similarity"`
	AllSimilarities []CategorySimilarity `json:"all_similarities,omitempty" yaml:"all_similarities,omitempty"`
}

// Record is the persisted output of one classification run. It round-trips
// losslessly through JSON.
type Record struct {
	Classification []PageResult       `json:"classification" yaml:"classification"`
	Accuracy       map[string]float64 `json:"accuracy" yaml:"accuracy"`
	Confidence     map[string]float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	ExecutionTime  float64            `json:"execution_time" yaml:"execution_time"` // seconds
}

// Assemble builds a Record from a classification set, its accuracy report,
// an optional confidence report (vision strategy only; nil otherwise), and
// the run duration.
//
// Per-page score lists are sorted descending by score here: a presentation
// choice for report consumers, not part of the classification contract.
// Unknown confidences are omitted from the confidence map rather than
// written as zero.
func Assemble(set *classify.ClassificationSet, accuracy *classify.AccuracyReport, confidence *classify.ConfidenceReport, elapsed time.Duration) *Record {
	rec := &Record{
		Classification: make([]PageResult, 0, set.Len()),
		ExecutionTime:  elapsed.Seconds(),
	}

	for _, pc := range set.Pages {
		pr := PageResult{
			PageNumber:     pc.PageNumber,
			Classification: pc.Label,
			Similarity:     pc.Score,
		}
		if len(pc.AllScores) > 0 {
			pr.AllSimilarities = make([]CategorySimilarity, len(pc.AllScores))
			for i, cs := range pc.AllScores {
				pr.AllSimilarities[i] = CategorySimilarity{Category: cs.Category, Score: cs.Score}
			}
			sort.SliceStable(pr.AllSimilarities, func(i, j int) bool {
				return pr.AllSimilarities[i].Score > pr.AllSimilarities[j].Score
			})
		}
		rec.Classification = append(rec.Classification, pr)
	}

	if accuracy != nil {
		rec.Accuracy = make(map[string]float64, len(accuracy.PerPage)+1)
		for page, indicator := range accuracy.PerPage {
			rec.Accuracy[strconv.Itoa(page)] = float64(indicator)
		}
		rec.Accuracy[OverallKey] = accuracy.Overall
	}

	if confidence != nil {
		rec.Confidence = make(map[string]float64, len(confidence.PerPage)+1)
		for page, conf := range confidence.PerPage {
			if !conf.Known {
				continue
			}
			rec.Confidence[strconv.Itoa(page)] = conf.Value
		}
		rec.Confidence[OverallKey] = confidence.Overall
	}

	return rec
}
