//go:build cgo

package embeddings

import (
	"context"
	"fmt"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedConfig configures the local ONNX embedding provider.
type FastEmbedConfig struct {
	// Model is the embedding model name. Defaults to BAAI/bge-small-en-v1.5.
	Model string
	// CacheDir caches downloaded model files.
	CacheDir string
	// MaxLength is the maximum input sequence length. Defaults to 512.
	MaxLength int
}

// fastEmbedModels maps friendly names to fastembed constants with their
// dimensions.
var fastEmbedModels = map[string]struct {
	model     fastembed.EmbeddingModel
	dimension int
}{
	"BAAI/bge-small-en-v1.5":                 {fastembed.BGESmallENV15, 384},
	"BAAI/bge-base-en-v1.5":                  {fastembed.BGEBaseENV15, 768},
	"sentence-transformers/all-MiniLM-L6-v2": {fastembed.AllMiniLML6V2, 384},
}

// FastEmbedder generates embeddings with a local ONNX model.
type FastEmbedder struct {
	mu        sync.Mutex
	model     *fastembed.FlagEmbedding
	dimension int
}

// NewFastEmbedder initializes the ONNX model. The first call downloads
// model files into the cache directory.
func NewFastEmbedder(cfg FastEmbedConfig) (*FastEmbedder, error) {
	name := cfg.Model
	if name == "" {
		name = "BAAI/bge-small-en-v1.5"
	}
	entry, ok := fastEmbedModels[name]
	if !ok {
		return nil, fmt.Errorf("embeddings: unsupported fastembed model %q", name)
	}

	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 512
	}

	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:     entry.model,
		CacheDir:  cfg.CacheDir,
		MaxLength: maxLength,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: init fastembed: %w", err)
	}

	return &FastEmbedder{model: model, dimension: entry.dimension}, nil
}

// EmbedBatch implements Embedder. The underlying model is not safe for
// concurrent use, so calls serialize.
func (f *FastEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	vecs, err := f.model.Embed(texts, len(texts))
	if err != nil {
		return nil, fmt.Errorf("embeddings: embed batch: %w", err)
	}
	return vecs, nil
}

// Dimension implements Embedder.
func (f *FastEmbedder) Dimension() int {
	return f.dimension
}

// Close releases model resources.
func (f *FastEmbedder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.model != nil {
		f.model.Destroy()
		f.model = nil
	}
	return nil
}

var _ Embedder = (*FastEmbedder)(nil)
