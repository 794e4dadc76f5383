package memory

import (
	"fmt"
	"math"
)

// DimensionMismatchError reports a similarity computation over vectors of
// different lengths. It indicates a deployment/config bug (mixed embedding
// models against one store), not a data-quality issue, so ranking aborts
// rather than skipping the record.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: %d vs %d", e.Want, e.Got)
}

// CosineSimilarity computes the cosine similarity between two equal-length
// vectors: dot product over the product of Euclidean norms, in [-1, 1].
// If either vector has zero norm the result is 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Want: len(a), Got: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}
