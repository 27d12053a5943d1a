package classify

// AccuracyReport maps page numbers to {0,1} correctness indicators, with
// Overall holding the arithmetic mean of all per-page indicators.
type AccuracyReport struct {
	PerPage map[int]int `json:"per_page" yaml:"per_page"`
	Overall float64     `json:"overall" yaml:"overall"`
}

// NewAccuracyReport computes the overall mean from per-page indicators.
func NewAccuracyReport(perPage map[int]int) *AccuracyReport {
	report := &AccuracyReport{PerPage: perPage}
	if len(perPage) == 0 {
		return report
	}
	sum := 0
	for _, v := range perPage {
		sum += v
	}
	report.Overall = float64(sum) / float64(len(perPage))
	return report
}

// Confidence is an explicit optional confidence value. Known is false when
// the page lacked usable log-probability data; an unknown confidence is
// never coerced to zero, since zero is a valid low-confidence value.
type Confidence struct {
	Value float64 `json:"value" yaml:"value"`
	Known bool    `json:"known" yaml:"known"`
}

// KnownConfidence returns a defined confidence value.
func KnownConfidence(v float64) Confidence {
	return Confidence{Value: v, Known: true}
}

// UnknownConfidence returns the undefined sentinel.
func UnknownConfidence() Confidence {
	return Confidence{}
}

// ConfidenceReport maps page numbers to per-page confidences. Overall is the
// mean over known entries only; unknown entries are excluded, not averaged
// in as zero.
type ConfidenceReport struct {
	PerPage map[int]Confidence `json:"per_page" yaml:"per_page"`
	Overall float64            `json:"overall" yaml:"overall"`
}

// NewConfidenceReport computes the overall mean over known entries.
func NewConfidenceReport(perPage map[int]Confidence) *ConfidenceReport {
	report := &ConfidenceReport{PerPage: perPage}
	sum := 0.0
	known := 0
	for _, c := range perPage {
		if !c.Known {
			continue
		}
		sum += c.Value
		known++
	}
	if known > 0 {
		report.Overall = sum / float64(known)
	}
	return report
}
