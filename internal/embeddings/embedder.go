// Package embeddings provides the embedding capability behind refpack's
// near-duplicate block detection. The fastembed provider runs local ONNX
// models and requires CGO; the hash embedder is a deterministic fallback
// that is always available and serves tests and offline mode.
package embeddings

import (
	"context"
	"math"
)

// Embedder produces one vector per input text.
type Embedder interface {
	// EmbedBatch returns one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension.
	Dimension() int
}

// CosineSimilarity returns the cosine similarity of two vectors, or 0 when
// either vector is zero or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
