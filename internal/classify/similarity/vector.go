package similarity

import "math"

// Cosine returns the cosine similarity of two vectors:
// (a·b) / (‖a‖·‖b‖), in [-1,1]. It is defined to be 0 when either vector
// has zero norm or when the dimensions differ; it never returns an error.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
