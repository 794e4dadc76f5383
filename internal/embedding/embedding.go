// Package embedding defines the external embedder contract and the Ollama
// implementation. The store treats the embedder as an opaque collaborator:
// failures and timeouts propagate as save/search failures, never retried.
package embedding

import "context"

// Embedder generates vector embeddings for text. Output dimensionality is
// fixed per deployment.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
	Dimensions() int
}

// EmbedBatch embeds each text in order with a single Embedder. The first
// failure aborts the batch.
func EmbedBatch(ctx context.Context, e Embedder, texts []string) ([][]float64, error) {
	vecs := make([][]float64, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, v)
	}
	return vecs, nil
}
