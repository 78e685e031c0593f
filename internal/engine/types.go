// Package engine orchestrates the optimization pipeline: segmentation,
// signal extraction, graph construction, spectral analysis, transforms,
// and workload keying. It is stateless and reentrant; everything it
// produces is request-scoped.
package engine

import (
	"errors"
	"fmt"

	"github.com/spectyralabs/spectyra/internal/signal"
	"github.com/spectyralabs/spectyra/internal/spectral"
	"github.com/spectyralabs/spectyra/internal/transform"
	"github.com/spectyralabs/spectyra/internal/unit"
)

// ErrInvalidRequest marks synchronous input validation failures. The
// wrapped message names the offending field.
var ErrInvalidRequest = errors.New("invalid request")

// Request is the inbound optimization payload. Either Blocks or RawText
// must be set.
type Request struct {
	Blocks  []unit.Block `json:"blocks,omitempty"`
	RawText string       `json:"rawText,omitempty"`

	// Path is "talk" or "code". Empty selects the configured default.
	Path string `json:"path,omitempty"`
	// Level is "safe", "balanced", or "aggressive". Empty means balanced.
	Level string `json:"level,omitempty"`

	// Workload attribution for analytics and savings estimates.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	TaskType string `json:"taskType,omitempty"`

	// Advanced knobs. Zero means "use the configured default".
	CodemapDetailLevel int `json:"codemapDetailLevel,omitempty"`
	KeepLastTurns      int `json:"keepLastTurns,omitempty"`
	MaxRefs            int `json:"maxRefs,omitempty"`

	// IncludeDebug populates Result.Debug. The authorization decision
	// for debug views belongs to the caller.
	IncludeDebug bool `json:"includeDebug,omitempty"`
}

// Budgets reports the effective limits a request ran under.
type Budgets struct {
	MaxRefs         int `json:"maxRefs"`
	MaxOutputTokens int `json:"maxOutputTokens"`
	NLIPairBudget   int `json:"nliPairBudget"`
}

// Signals summarizes the structured records extracted from the request.
type Signals struct {
	Constraints    []string               `json:"constraints,omitempty"`
	FailingSignals []signal.FailingSignal `json:"failingSignals,omitempty"`
	TouchedFiles   []string               `json:"touchedFiles,omitempty"`
	UserAsks       []string               `json:"userAsks,omitempty"`
}

// DebugInfo is populated only when the request asks for a debug view.
type DebugInfo struct {
	Budgets    Budgets                      `json:"budgets"`
	Spectral   spectral.Report              `json:"spectral"`
	Transforms map[string]transform.Metrics `json:"transforms"`
	Signals    Signals                      `json:"signals"`
}

// Result is the outbound optimization response.
type Result struct {
	OptimizedContent  []unit.Block            `json:"optimizedContent"`
	AppliedTransforms []string                `json:"appliedTransforms"`
	Diff              transform.DiffSummary   `json:"diff"`
	Safety            transform.SafetySummary `json:"safety"`

	// MaxOutputTokens caps the generation budget for the optimized
	// prompt, independent of the transform choice.
	MaxOutputTokens int `json:"maxOutputTokens"`

	WorkloadKey string `json:"workloadKey"`
	PromptHash  string `json:"promptHash"`

	Debug *DebugInfo `json:"debug,omitempty"`
}

// validate rejects bad input before pipeline entry with an error naming
// the offending field.
func (r Request) validate() error {
	if len(r.Blocks) == 0 && r.RawText == "" {
		return fmt.Errorf("%w: content is required (blocks or rawText)", ErrInvalidRequest)
	}
	for i, b := range r.Blocks {
		if b.Text == "" {
			return fmt.Errorf("%w: blocks[%d].text must not be empty", ErrInvalidRequest, i)
		}
	}
	switch r.Path {
	case "", string(unit.PathTalk), string(unit.PathCode):
	default:
		return fmt.Errorf("%w: path %q (want talk or code)", ErrInvalidRequest, r.Path)
	}
	if _, err := transform.ParseLevel(r.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.KeepLastTurns < 0 {
		return fmt.Errorf("%w: keepLastTurns must be >= 0", ErrInvalidRequest)
	}
	if r.MaxRefs < 0 {
		return fmt.Errorf("%w: maxRefs must be >= 0", ErrInvalidRequest)
	}
	return nil
}
