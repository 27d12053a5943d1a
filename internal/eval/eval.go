// Package eval compares a strategy's output against a human-labeled
// expected set and computes per-page and overall accuracy.
package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/doctriage/internal/classify"
)

// Evaluate compares actual labels against expected labels by exact string
// equality, ignoring scores. Every actual page number must exist in the
// expected set; a missing page is a hard data mismatch surfaced as a
// *classify.NotFoundError, never silently scored as incorrect. The two sets
// must share the same indexing origin.
func Evaluate(expected, actual *classify.ClassificationSet) (*classify.AccuracyReport, error) {
	if expected == nil || actual == nil {
		return nil, fmt.Errorf("both expected and actual sets are required")
	}
	if expected.Origin != actual.Origin {
		return nil, fmt.Errorf("indexing origin mismatch: expected set is %d-indexed, actual set is %d-indexed",
			expected.Origin, actual.Origin)
	}

	perPage := make(map[int]int, actual.Len())
	for _, pc := range actual.Pages {
		want, err := expected.ByPage(pc.PageNumber)
		if err != nil {
			return nil, err
		}
		if pc.Label == want.Label {
			perPage[pc.PageNumber] = 1
		} else {
			perPage[pc.PageNumber] = 0
		}
	}

	return classify.NewAccuracyReport(perPage), nil
}

// expectedFile is the on-disk shape of a human-labeled expected set.
type expectedFile struct {
	Origin int            `yaml:"origin" json:"origin"`
	Pages  map[int]string `yaml:"pages" json:"pages"`
}

// LoadExpected reads a human-authored expected set from a YAML (or JSON)
// file of the form:
//
//	origin: 0
//	pages:
//	  0: Policy
//	  1: Certificate
//
// The origin must match the strategy the set will be evaluated against.
func LoadExpected(path string) (*classify.ClassificationSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expected set: %w", err)
	}

	var ef expectedFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse expected set: %w", err)
	}
	if ef.Origin != 0 && ef.Origin != 1 {
		return nil, fmt.Errorf("expected set origin must be 0 or 1, got %d", ef.Origin)
	}
	if len(ef.Pages) == 0 {
		return nil, fmt.Errorf("expected set has no pages")
	}

	set := classify.NewClassificationSet(classify.IndexOrigin(ef.Origin))

	// Deterministic page order.
	min, max := -1, -1
	for n := range ef.Pages {
		if min == -1 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	for n := min; n <= max; n++ {
		label, ok := ef.Pages[n]
		if !ok {
			continue
		}
		set.Append(classify.PageClassification{PageNumber: n, Label: label})
	}

	return set, nil
}
