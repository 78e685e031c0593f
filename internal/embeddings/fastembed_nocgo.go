//go:build !cgo

package embeddings

import (
	"context"
	"errors"
)

// ErrFastEmbedNotAvailable is returned when the binary was built without
// CGO; callers fall back to the hash embedder.
var ErrFastEmbedNotAvailable = errors.New("embeddings: fastembed not available (built without cgo)")

// FastEmbedConfig configures the local ONNX embedding provider.
type FastEmbedConfig struct {
	Model     string
	CacheDir  string
	MaxLength int
}

// FastEmbedder is a stub for non-CGO builds.
type FastEmbedder struct{}

// NewFastEmbedder returns ErrFastEmbedNotAvailable without CGO.
func NewFastEmbedder(_ FastEmbedConfig) (*FastEmbedder, error) {
	return nil, ErrFastEmbedNotAvailable
}

// EmbedBatch returns ErrFastEmbedNotAvailable without CGO.
func (f *FastEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

// Dimension returns 0 without CGO.
func (f *FastEmbedder) Dimension() int { return 0 }

// Close is a no-op without CGO.
func (f *FastEmbedder) Close() error { return nil }
