package graph

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/unit"
)

// defaultPairBudget caps how many unit pairs are sent for classification
// per request. Pairs are selected nearest-index-first so adjacent content
// is classified before far-apart content.
const defaultPairBudget = 64

// SemanticBuilder produces similarity and contradiction edges by running
// candidate unit pairs through the NLI capability. It is the only builder
// that calls out of process and the pipeline's sole suspension point.
type SemanticBuilder struct {
	svc        nli.Service
	pairBudget int
	logger     *zap.Logger
}

// NewSemanticBuilder creates a builder on top of an NLI service. pairBudget
// <= 0 selects the default.
func NewSemanticBuilder(svc nli.Service, pairBudget int, logger *zap.Logger) *SemanticBuilder {
	if pairBudget <= 0 {
		pairBudget = defaultPairBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemanticBuilder{svc: svc, pairBudget: pairBudget, logger: logger.Named("semantic")}
}

// candidatePair is an index pair eligible for classification.
type candidatePair struct {
	i, j int
}

// Build classifies candidate pairs and folds entailment into similarity
// edges and contradiction into contradiction edges; neutral produces no
// edge. Classification failure for a pair degrades to no edge, which is
// the conservative, non-destructive outcome.
func (b *SemanticBuilder) Build(ctx context.Context, units []unit.Unit) ([]Edge, error) {
	candidates := b.selectPairs(units)
	if len(candidates) == 0 {
		return nil, nil
	}

	pairs := make([]nli.Pair, len(candidates))
	for idx, c := range candidates {
		pairs[idx] = nli.Pair{Premise: units[c.i].Text, Hypothesis: units[c.j].Text}
	}

	results, err := b.svc.ClassifyBatch(ctx, pairs)
	if err != nil {
		// Respect cancellation; anything else degrades to no edges.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn("classification unavailable, emitting no semantic edges", zap.Error(err))
		return nil, nil
	}
	if len(results) != len(candidates) {
		b.logger.Warn("result count mismatch, emitting no semantic edges",
			zap.Int("got", len(results)), zap.Int("want", len(candidates)))
		return nil, nil
	}

	set := newEdgeSet()
	for idx, res := range results {
		c := candidates[idx]
		switch res.Label {
		case nli.LabelEntailment:
			set.add(units[c.i].Index, units[c.j].Index, res.Confidence, EdgeSimilarity)
		case nli.LabelContradiction:
			set.add(units[c.i].Index, units[c.j].Index, res.Confidence, EdgeContradiction)
		}
	}
	return set.list(), nil
}

// selectPairs returns eligible pairs nearest-index-first, capped by the
// pair budget. Only natural-language unit kinds carry an entailment
// signal, so code/patch/tool pairs are never sent.
func (b *SemanticBuilder) selectPairs(units []unit.Unit) []candidatePair {
	var candidates []candidatePair
	for i := 0; i < len(units); i++ {
		if !languageKind(units[i].Kind) {
			continue
		}
		for j := i + 1; j < len(units); j++ {
			if !languageKind(units[j].Kind) {
				continue
			}
			candidates = append(candidates, candidatePair{i: i, j: j})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		da := candidates[a].j - candidates[a].i
		db := candidates[b].j - candidates[b].i
		if da != db {
			return da < db
		}
		return candidates[a].i < candidates[b].i
	})

	if len(candidates) > b.pairBudget {
		candidates = candidates[:b.pairBudget]
	}
	return candidates
}

func languageKind(k unit.Kind) bool {
	return k == unit.KindNarrative || k == unit.KindConstraint
}
