package transform

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/graph"
	"github.com/spectyralabs/spectyra/internal/spectral"
	"github.com/spectyralabs/spectyra/internal/tokens"
	"github.com/spectyralabs/spectyra/internal/unit"
)

// Config holds the pipeline's startup knobs.
type Config struct {
	// SimilarityReuseThreshold is the cosine similarity above which two
	// blocks count as near-identical for refpack.
	SimilarityReuseThreshold float64
	// MaxRefs is the default refpack budget when the request sets none.
	MaxRefs int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{SimilarityReuseThreshold: 0.92, MaxRefs: defaultMaxRefs}
}

// Validate rejects out-of-range knobs at startup.
func (c Config) Validate() error {
	if c.SimilarityReuseThreshold < 0 || c.SimilarityReuseThreshold > 1 {
		return fmt.Errorf("transform: similarity_reuse_threshold %.3f outside [0,1]", c.SimilarityReuseThreshold)
	}
	if c.MaxRefs < 0 {
		return fmt.Errorf("transform: max_refs must be >= 0, got %d", c.MaxRefs)
	}
	return nil
}

// applier is one compression transform. An error from apply means the
// precondition failed: the transform is skipped whole, never partially
// applied.
type applier interface {
	name() string
	apply(ctx context.Context, st *state) (Metrics, error)
}

// state is the per-request working set shared by the transforms in order.
// texts is the mutable copy of unit content; units themselves stay
// immutable.
type state struct {
	units    []unit.Unit
	texts    []string
	changed  []bool
	report   spectral.Report
	opts     Options
	unstable map[int]bool

	codemapKept    int
	codemapOmitted int
}

// eligible returns unit indices matching pred, in order, excluding the
// last KeepLastTurns units and, below aggressive level, units flagged
// unstable by the analyzer.
func (s *state) eligible(pred func(unit.Unit) bool) []int {
	protectTail := len(s.units) - s.opts.KeepLastTurns
	aggressive := s.opts.Level.Aggressiveness() >= LevelAggressive.Aggressiveness()

	var out []int
	for i, u := range s.units {
		if i >= protectTail {
			continue
		}
		if s.unstable[i] && !aggressive {
			continue
		}
		if pred(u) {
			out = append(out, i)
		}
	}
	return out
}

// Pipeline applies the transform set selected by the optimization level.
type Pipeline struct {
	cfg      Config
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewPipeline creates a pipeline after validating the config. The
// embedder backs refpack's near-identical matching.
func NewPipeline(cfg Config, embedder embeddings.Embedder, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("transform: embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, embedder: embedder, logger: logger.Named("transform")}, nil
}

// transformsFor maps the level to the enabled transform set: safe runs
// refpack only, balanced adds phrasebook, aggressive adds codemap.
func (p *Pipeline) transformsFor(level Level, edges []graph.Edge) []applier {
	set := []applier{
		&refpack{embedder: p.embedder, threshold: p.cfg.SimilarityReuseThreshold},
	}
	if level.Aggressiveness() >= LevelBalanced.Aggressiveness() {
		set = append(set, &phrasebook{})
	}
	if level.Aggressiveness() >= LevelAggressive.Aggressiveness() {
		set = append(set, &codemap{edges: edges})
	}
	return set
}

// Run applies the enabled transforms in order and assembles the result.
// The pipeline always completes: a failing transform is skipped and the
// content falls back to the original wherever nothing applied.
func (p *Pipeline) Run(ctx context.Context, units []unit.Unit, edges []graph.Edge, report spectral.Report, opts Options) (*Result, error) {
	if opts.Level == "" {
		opts.Level = LevelBalanced
	}
	if opts.MaxRefs == 0 {
		opts.MaxRefs = p.cfg.MaxRefs
	}

	st := &state{
		units:    units,
		texts:    make([]string, len(units)),
		changed:  make([]bool, len(units)),
		report:   report,
		opts:     opts,
		unstable: make(map[int]bool, len(report.UnstableUnits)),
	}
	for i, u := range units {
		st.texts[i] = u.Text
	}
	for _, idx := range report.UnstableUnits {
		st.unstable[idx] = true
	}

	before := st.totalTokens()
	perTransform := make(map[string]Metrics)
	var applied []string
	var refsReplaced, phraseEntries int

	for _, tr := range p.transformsFor(opts.Level, edges) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metrics, err := tr.apply(ctx, st)
		if err != nil {
			// Skipped, not aborted. Omission from applied records it.
			p.logger.Warn("transform skipped", zap.String("transform", tr.name()), zap.Error(err))
			continue
		}
		perTransform[tr.name()] = metrics
		if metrics.Applied {
			applied = append(applied, tr.name())
			switch tr.name() {
			case "refpack":
				refsReplaced = metrics.Entries
			case "phrasebook":
				phraseEntries = metrics.Entries
			}
		}
	}

	after := st.totalTokens()
	stats := tokens.Stats{Before: before, After: after}

	content := make([]unit.Block, len(units))
	for i, u := range units {
		content[i] = unit.Block{Text: st.texts[i], Origin: originFor(u.Kind)}
	}

	return &Result{
		Content: content,
		Applied: applied,
		Diff: DiffSummary{
			TokensBefore:      before,
			TokensAfter:       after,
			PercentSaved:      stats.PercentSaved(),
			RefsReplaced:      refsReplaced,
			PhrasebookEntries: phraseEntries,
			CodemapKept:       st.codemapKept,
			CodemapOmitted:    st.codemapOmitted,
		},
		Safety:       p.safetySummary(st, applied),
		PerTransform: perTransform,
	}, nil
}

// originFor maps a unit kind back to a block origin for the optimized
// message set.
func originFor(k unit.Kind) unit.Origin {
	if k == unit.KindTool {
		return unit.OriginTool
	}
	return unit.OriginUser
}

// safetySummary describes what was preserved versus changed and attaches
// risk notes when mixed/unstable units were compressed anyway.
func (p *Pipeline) safetySummary(st *state, applied []string) SafetySummary {
	summary := SafetySummary{
		Preserved: []string{},
		Changed:   []string{},
		RiskNotes: []string{},
	}

	kindCounts := map[unit.Kind]int{}
	changedCounts := map[unit.Kind]int{}
	for i, u := range st.units {
		kindCounts[u.Kind]++
		if st.changed[i] {
			changedCounts[u.Kind]++
		}
	}

	for _, k := range []unit.Kind{unit.KindConstraint, unit.KindPatch, unit.KindCode, unit.KindNarrative, unit.KindTool} {
		total := kindCounts[k]
		if total == 0 {
			continue
		}
		changed := changedCounts[k]
		if changed == 0 {
			summary.Preserved = append(summary.Preserved, fmt.Sprintf("all %d %s units kept verbatim", total, k))
		} else {
			summary.Changed = append(summary.Changed, fmt.Sprintf("%d of %d %s units compressed", changed, total, k))
		}
	}

	if len(applied) == 0 {
		summary.Preserved = append(summary.Preserved, "no transform applied; content returned unmodified")
	}

	verdict := st.report.Recommendation
	if verdict != spectral.RecommendStable {
		for _, idx := range st.report.UnstableUnits {
			if st.changed[idx] {
				summary.RiskNotes = append(summary.RiskNotes,
					fmt.Sprintf("unit %d was flagged unstable but compressed at level %q", idx, st.opts.Level))
			}
		}
		if verdict == spectral.RecommendUnstable && st.opts.Level == LevelAggressive {
			summary.RiskNotes = append(summary.RiskNotes,
				"aggressive optimization requested on an unstable verdict; compression may hide unresolved contradictions")
		}
		if verdict == spectral.RecommendMixed && len(applied) > 0 && st.opts.Level == LevelAggressive {
			summary.RiskNotes = append(summary.RiskNotes,
				"aggressive level on a mixed verdict: review the diff before sending")
		}
	}

	return summary
}
