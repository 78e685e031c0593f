package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	table := NewTable(nil)

	cost := table.EstimateCost(Usage{InputTokens: 1_000_000, OutputTokens: 100_000}, "openai")
	assert.InDelta(t, 2.50+1.00, cost, 1e-9)
}

func TestEstimateCostUnknownProvider(t *testing.T) {
	table := NewTable(nil)
	assert.Equal(t, 0.0, table.EstimateCost(Usage{InputTokens: 1000}, "unknown-vendor"))
	assert.Equal(t, 0.0, table.EstimateCost(Usage{InputTokens: 1000}, ""))
}

func TestEstimateCostNormalizesProviderName(t *testing.T) {
	table := NewTable(nil)
	a := table.EstimateCost(Usage{InputTokens: 5000}, "Anthropic")
	b := table.EstimateCost(Usage{InputTokens: 5000}, " anthropic ")
	assert.Equal(t, a, b)
	assert.Greater(t, a, 0.0)
}

func TestEstimateCostNegativeUsage(t *testing.T) {
	table := NewTable(nil)
	assert.Equal(t, 0.0, table.EstimateCost(Usage{InputTokens: -5}, "openai"))
}

func TestCustomRates(t *testing.T) {
	table := NewTable(map[string]Rate{"local": {InputPerMillion: 1, OutputPerMillion: 2}})
	cost := table.EstimateCost(Usage{InputTokens: 500_000, OutputTokens: 500_000}, "local")
	assert.InDelta(t, 1.5, cost, 1e-9)
	// Defaults are replaced, not merged.
	assert.Equal(t, 0.0, table.EstimateCost(Usage{InputTokens: 1}, "openai"))
}
