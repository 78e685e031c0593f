package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/pricing"
)

func TestBuildAndLookup(t *testing.T) {
	reg := NewBuilder(zaptest.NewLogger(t)).
		AddNLI("static", func() (nli.Service, error) { return &nli.Static{}, nil }).
		AddEmbedder("hash", func() (embeddings.Embedder, error) { return embeddings.NewHashEmbedder(), nil }).
		SetPricing(pricing.NewTable(nil)).
		Build()

	svc, ok := reg.NLI("static")
	require.True(t, ok)
	assert.NotNil(t, svc)

	e, ok := reg.Embedder("hash")
	require.True(t, ok)
	assert.NotNil(t, e)

	_, ok = reg.NLI("absent")
	assert.False(t, ok)

	assert.Empty(t, reg.Failures())
	assert.NotNil(t, reg.Pricing())
}

func TestBuildCollectsFailures(t *testing.T) {
	boom := errors.New("model download failed")
	reg := NewBuilder(zaptest.NewLogger(t)).
		AddEmbedder("hash", func() (embeddings.Embedder, error) { return embeddings.NewHashEmbedder(), nil }).
		AddEmbedder("broken", func() (embeddings.Embedder, error) { return nil, boom }).
		Build()

	// The failing backend is recorded; the healthy one still works.
	require.Len(t, reg.Failures(), 1)
	assert.Equal(t, "broken", reg.Failures()[0].Name)
	assert.ErrorIs(t, reg.Failures()[0].Err, boom)

	_, ok := reg.Embedder("hash")
	assert.True(t, ok)
	_, ok = reg.Embedder("broken")
	assert.False(t, ok)
}

func TestDefaultPricing(t *testing.T) {
	reg := NewBuilder(nil).Build()
	require.NotNil(t, reg.Pricing())
	assert.Equal(t, 0.0, reg.Pricing().EstimateCost(pricing.Usage{InputTokens: 100}, "nobody"))
}
