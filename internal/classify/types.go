package classify

// Unclassified is the sentinel label assigned when no category meets the
// decision threshold or when a page has no usable representation.
const Unclassified = "Unclassified"

// IndexOrigin records the page-numbering convention of a ClassificationSet.
// The similarity strategy numbers pages from 0, the vision strategy from 1.
// The origin is carried explicitly so the two conventions are never silently
// mixed; evaluation rejects sets with mismatched origins.
type IndexOrigin int

const (
	// OriginZero numbers pages 0..n-1 (similarity strategy).
	OriginZero IndexOrigin = 0
	// OriginOne numbers pages 1..n (vision strategy).
	OriginOne IndexOrigin = 1
)

// CategoryScore pairs a category name with its raw score for one page.
type CategoryScore struct {
	Category string  `json:"category" yaml:"category"`
	Score    float64 `json:"score" yaml:"score"`
}

// PageClassification is the decision for a single document page.
//
// Score semantics depend on the strategy: cosine similarity in [-1,1] for
// the similarity classifier, model confidence in [0,1] for the vision
// classifier. AllScores holds every category with its raw score in registry
// order; it is empty when the page had no usable representation.
type PageClassification struct {
	PageNumber int             `json:"page_number" yaml:"page_number"`
	Label      string          `json:"label" yaml:"label"`
	Score      float64         `json:"score" yaml:"score"`
	AllScores  []CategoryScore `json:"all_scores,omitempty" yaml:"all_scores,omitempty"`
}

// ClassificationSet is the ordered per-page output of one strategy run.
type ClassificationSet struct {
	Origin IndexOrigin          `json:"origin" yaml:"origin"`
	Pages  []PageClassification `json:"pages" yaml:"pages"`
}

// NewClassificationSet creates an empty set with the given indexing origin.
func NewClassificationSet(origin IndexOrigin) *ClassificationSet {
	return &ClassificationSet{Origin: origin}
}

// Append adds a page classification, preserving insertion order.
func (s *ClassificationSet) Append(pc PageClassification) {
	s.Pages = append(s.Pages, pc)
}

// Len returns the number of classified pages.
func (s *ClassificationSet) Len() int {
	return len(s.Pages)
}

// ByPage returns the classification for the given page number.
// It returns a *NotFoundError when the set has no entry for that page.
func (s *ClassificationSet) ByPage(pageNumber int) (PageClassification, error) {
	for _, pc := range s.Pages {
		if pc.PageNumber == pageNumber {
			return pc, nil
		}
	}
	return PageClassification{}, &NotFoundError{PageNumber: pageNumber}
}
