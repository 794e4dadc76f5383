package embedding

import (
	"context"
	"crypto/sha256"
	"math"
)

// Mock is a deterministic embedder for tests and offline use. Identical text
// always yields the identical unit vector. Fixed vectors can be pinned per
// text to make similarity scores predictable.
type Mock struct {
	Dims    int
	Vectors map[string][]float64 // optional pinned vectors by text
	Err     error                // returned by Embed when set
}

// NewMock creates a Mock with the given dimensionality.
func NewMock(dims int) *Mock {
	if dims <= 0 {
		dims = 8
	}
	return &Mock{Dims: dims}
}

func (m *Mock) Model() string   { return "mock" }
func (m *Mock) Dimensions() int { return m.Dims }

// Pin fixes the vector returned for text.
func (m *Mock) Pin(text string, vec []float64) {
	if m.Vectors == nil {
		m.Vectors = make(map[string][]float64)
	}
	m.Vectors[text] = vec
}

// Embed returns the pinned vector for text if present, otherwise an
// L2-normalized vector derived from the text's sha256 digest.
func (m *Mock) Embed(_ context.Context, text string) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return append([]float64(nil), v...), nil
	}

	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, m.Dims)
	var norm float64
	for i := range vec {
		b := sum[i%len(sum)]
		vec[i] = float64(b)/127.5 - 1 // spread into [-1, 1]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
