package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// hashDimension is the fixed vector size of the hash embedder.
const hashDimension = 256

var wordToken = regexp.MustCompile(`[A-Za-z0-9_]+`)

// HashEmbedder maps texts to bag-of-hashed-tokens vectors. It captures
// lexical overlap only, which is enough for near-identical block
// detection, and is fully deterministic with no model download.
type HashEmbedder struct{}

// NewHashEmbedder creates a hash embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// EmbedBatch implements Embedder.
func (h *HashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.embed(text)
	}
	return out, nil
}

// Dimension implements Embedder.
func (h *HashEmbedder) Dimension() int {
	return hashDimension
}

func (h *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, hashDimension)
	for _, tok := range wordToken.FindAllString(strings.ToLower(text), -1) {
		hasher := fnv.New32a()
		hasher.Write([]byte(tok)) //nolint:errcheck
		vec[hasher.Sum32()%hashDimension]++
	}

	// L2 normalize so cosine comparisons are scale-free.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

var _ Embedder = (*HashEmbedder)(nil)
