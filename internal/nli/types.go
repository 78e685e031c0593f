// Package nli provides the natural-language-inference capability used by
// the graph similarity/contradiction builder. The concrete backend is an
// HTTP sidecar exposing batched premise/hypothesis classification; a static
// in-process implementation serves tests and offline mode.
package nli

import "context"

// Label is an entailment classification outcome.
type Label string

const (
	LabelEntailment    Label = "entailment"
	LabelContradiction Label = "contradiction"
	LabelNeutral       Label = "neutral"
)

// Pair is one premise/hypothesis classification request.
type Pair struct {
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
}

// Result is the classification outcome for one pair.
type Result struct {
	Label      Label              `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Service classifies batches of text pairs. Implementations must return
// exactly one result per input pair, in input order, and must degrade to
// all-neutral results on unavailability instead of failing the caller.
type Service interface {
	ClassifyBatch(ctx context.Context, pairs []Pair) ([]Result, error)
}

// neutralConfidence is the midpoint confidence reported when the backend
// is unavailable and results are degraded.
const neutralConfidence = 0.5

// NeutralResults returns n all-neutral results with midpoint confidence.
func NeutralResults(n int) []Result {
	out := make([]Result, n)
	for i := range out {
		out[i] = Result{Label: LabelNeutral, Confidence: neutralConfidence}
	}
	return out
}

// Static is a deterministic in-process Service for tests and offline mode.
// Classify is consulted per pair; when nil every pair is neutral.
type Static struct {
	Classify func(Pair) Result
}

// ClassifyBatch implements Service.
func (s *Static) ClassifyBatch(_ context.Context, pairs []Pair) ([]Result, error) {
	if s.Classify == nil {
		return NeutralResults(len(pairs)), nil
	}
	out := make([]Result, len(pairs))
	for i, p := range pairs {
		out[i] = s.Classify(p)
	}
	return out, nil
}

var _ Service = (*Static)(nil)
