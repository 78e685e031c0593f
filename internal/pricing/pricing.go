// Package pricing estimates request cost in USD from token usage. It backs
// the savings figures on diff summaries; unknown providers estimate to
// zero rather than failing.
package pricing

import "strings"

// Usage is the token usage of one request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Rate holds per-million-token USD prices for one provider.
type Rate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Estimator estimates the cost of a usage for a provider.
type Estimator interface {
	EstimateCost(usage Usage, provider string) float64
}

// Table is a static provider rate table.
type Table struct {
	rates map[string]Rate
}

// defaultRates are blended list prices per provider family. They are
// analytics-grade estimates, not billing data.
var defaultRates = map[string]Rate{
	"openai":    {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"anthropic": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"google":    {InputPerMillion: 1.25, OutputPerMillion: 5.00},
	"mistral":   {InputPerMillion: 2.00, OutputPerMillion: 6.00},
}

// NewTable creates a rate table. Empty rates select the defaults.
func NewTable(rates map[string]Rate) *Table {
	if len(rates) == 0 {
		rates = defaultRates
	}
	return &Table{rates: rates}
}

// EstimateCost returns the estimated USD cost, or 0 for an unknown
// provider or empty usage. The result is never negative.
func (t *Table) EstimateCost(usage Usage, provider string) float64 {
	rate, ok := t.rates[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return 0
	}
	if usage.InputTokens < 0 || usage.OutputTokens < 0 {
		return 0
	}
	const million = 1_000_000
	return float64(usage.InputTokens)/million*rate.InputPerMillion +
		float64(usage.OutputTokens)/million*rate.OutputPerMillion
}

var _ Estimator = (*Table)(nil)
