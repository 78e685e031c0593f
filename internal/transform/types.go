// Package transform selects and applies compression transforms based on
// the stability verdict: refpack (reference deduplication), phrasebook
// (phrase substitution), and codemap (code-symbol elision). A transform
// whose precondition fails is skipped, never partially applied; skipping
// is recorded by omission from the applied list.
package transform

import (
	"fmt"

	"github.com/spectyralabs/spectyra/internal/unit"
)

// Level is the requested optimization level.
type Level string

const (
	LevelSafe       Level = "safe"
	LevelBalanced   Level = "balanced"
	LevelAggressive Level = "aggressive"
)

// ParseLevel parses a level string. Empty selects balanced; anything else
// unknown is an input error.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "":
		return LevelBalanced, nil
	case LevelSafe, LevelBalanced, LevelAggressive:
		return Level(s), nil
	default:
		return "", fmt.Errorf("transform: invalid optimization level %q", s)
	}
}

// Aggressiveness maps the level to its numeric aggressiveness.
func (l Level) Aggressiveness() int {
	switch l {
	case LevelSafe:
		return 1
	case LevelAggressive:
		return 4
	default:
		return 2
	}
}

// Metrics reports one transform's outcome.
type Metrics struct {
	TokensBefore int  `json:"tokensBefore"`
	TokensAfter  int  `json:"tokensAfter"`
	Entries      int  `json:"entries"`
	Applied      bool `json:"applied"`
}

// DiffSummary reports what the whole pipeline changed.
type DiffSummary struct {
	TokensBefore      int     `json:"tokensBefore"`
	TokensAfter       int     `json:"tokensAfter"`
	PercentSaved      float64 `json:"percentSaved"`
	RefsReplaced      int     `json:"refsReplaced"`
	PhrasebookEntries int     `json:"phrasebookEntries"`
	CodemapKept       int     `json:"codemapKept"`
	CodemapOmitted    int     `json:"codemapOmitted"`

	// EstimatedSavedUSD is filled by the engine when the request names a
	// provider known to the pricing table.
	EstimatedSavedUSD float64 `json:"estimatedSavedUsd,omitempty"`
}

// SafetySummary describes, in natural language, what was preserved versus
// changed, with explicit risk notes when mixed/unstable units were
// compressed anyway.
type SafetySummary struct {
	Preserved []string `json:"preserved"`
	Changed   []string `json:"changed"`
	RiskNotes []string `json:"riskNotes"`
}

// Options are the per-request knobs.
type Options struct {
	Level Level
	// MaxRefs caps refpack replacements. 0 selects the default.
	MaxRefs int
	// CodemapDetailLevel selects how much symbol detail codemap keeps:
	// 0 signatures only, 1 adds definitions, 2 keeps leading comments.
	CodemapDetailLevel int
	// KeepLastTurns exempts the final N units from all transforms.
	KeepLastTurns int
}

// Result is the pipeline output. Content always carries a complete,
// non-empty optimized message set; when every transform skips it is the
// unmodified original.
type Result struct {
	Content      []unit.Block       `json:"content"`
	Applied      []string           `json:"appliedTransforms"`
	Diff         DiffSummary        `json:"diff"`
	Safety       SafetySummary      `json:"safety"`
	PerTransform map[string]Metrics `json:"transforms"`
}
