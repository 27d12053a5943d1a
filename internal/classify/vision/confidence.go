package vision

import (
	"math"
	"strings"

	"github.com/jackzampolin/doctriage/internal/classify"
	"github.com/jackzampolin/doctriage/internal/providers"
)

// attributeConfidence derives one confidence per page from the completion's
// token log-probabilities.
//
// Attribution rule: the completion text is reconstructed by concatenating
// the returned tokens, tracking per-token byte offsets. Each page entry's
// quoted label value is located in order within that text; the tokens
// overlapping the label's byte span are its label tokens. Per-token
// log-probabilities are converted to linear probabilities (exp) and combined
// by product, giving joint-likelihood semantics for multi-token labels.
//
// A page whose label span cannot be located, or whose span has no tokens,
// gets an unknown confidence. Unknown is distinct from zero: zero is a valid
// low-confidence value.
func attributeConfidence(tokens []providers.TokenLogprob, labels []pageLabel) map[int]classify.Confidence {
	perPage := make(map[int]classify.Confidence, len(labels))

	if len(tokens) == 0 {
		for _, l := range labels {
			perPage[l.PageNumber] = classify.UnknownConfidence()
		}
		return perPage
	}

	// Reconstruct the completion and record each token's byte span.
	var sb strings.Builder
	starts := make([]int, len(tokens))
	ends := make([]int, len(tokens))
	for i, tok := range tokens {
		starts[i] = sb.Len()
		sb.WriteString(tok.Token)
		ends[i] = sb.Len()
	}
	text := sb.String()

	// Labels appear in the completion in entry order; scan forward so a
	// repeated label value attributes to the right occurrence.
	searchFrom := 0
	for _, l := range labels {
		needle := `"` + l.Label + `"`
		idx := strings.Index(text[searchFrom:], needle)
		if idx < 0 {
			perPage[l.PageNumber] = classify.UnknownConfidence()
			continue
		}
		spanStart := searchFrom + idx + 1 // inside the opening quote
		spanEnd := spanStart + len(l.Label)
		searchFrom = spanEnd

		perPage[l.PageNumber] = spanConfidence(tokens, starts, ends, spanStart, spanEnd)
	}

	return perPage
}

// spanConfidence multiplies the linear probabilities of all tokens
// overlapping [spanStart, spanEnd).
func spanConfidence(tokens []providers.TokenLogprob, starts, ends []int, spanStart, spanEnd int) classify.Confidence {
	product := 1.0
	matched := false
	for i := range tokens {
		if ends[i] <= spanStart || starts[i] >= spanEnd {
			continue
		}
		p := math.Exp(tokens[i].Logprob)
		if math.IsNaN(p) {
			return classify.UnknownConfidence()
		}
		product *= p
		matched = true
	}
	if !matched {
		return classify.UnknownConfidence()
	}
	return classify.KnownConfidence(product)
}
