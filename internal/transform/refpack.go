package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/textnorm"
	"github.com/spectyralabs/spectyra/internal/tokens"
	"github.com/spectyralabs/spectyra/internal/unit"
)

const (
	// refpackMinRunes is the smallest block worth replacing with a
	// reference; below this the reference costs as much as the block.
	refpackMinRunes = 200

	defaultMaxRefs = 8
)

// refpack replaces repeated large blocks (prior tool output, prior file
// content) with short references to their first occurrence. Identical
// blocks match on collapsed text; near-identical blocks match on embedding
// cosine similarity against the reuse threshold.
type refpack struct {
	embedder  embeddings.Embedder
	threshold float64
}

func (r *refpack) name() string { return "refpack" }

func (r *refpack) apply(ctx context.Context, st *state) (Metrics, error) {
	metrics := Metrics{TokensBefore: st.totalTokens()}

	candidates := st.eligible(func(u unit.Unit) bool {
		return (u.Kind == unit.KindTool || u.Kind == unit.KindCode) &&
			len([]rune(st.texts[u.Index])) >= refpackMinRunes
	})
	if len(candidates) < 2 {
		metrics.TokensAfter = metrics.TokensBefore
		return metrics, nil
	}

	vectors, err := r.embedCandidates(ctx, st, candidates)
	if err != nil {
		// Precondition failed: without vectors near-identical matching is
		// ambiguous, so the transform skips entirely.
		return Metrics{}, fmt.Errorf("refpack: embed blocks: %w", err)
	}

	maxRefs := st.opts.MaxRefs
	if maxRefs <= 0 {
		maxRefs = defaultMaxRefs
	}

	replaced := 0
	for ci := 1; ci < len(candidates) && replaced < maxRefs; ci++ {
		idx := candidates[ci]
		target, ok := r.findEarlierMatch(st, candidates[:ci], idx, vectors, ci)
		if !ok {
			continue
		}
		st.texts[idx] = referenceText(target, st.texts[target])
		st.changed[idx] = true
		replaced++
	}

	metrics.Entries = replaced
	metrics.TokensAfter = st.totalTokens()
	metrics.Applied = replaced > 0
	return metrics, nil
}

// embedCandidates embeds every candidate block in one batch.
func (r *refpack) embedCandidates(ctx context.Context, st *state, candidates []int) ([][]float32, error) {
	texts := make([]string, len(candidates))
	for i, idx := range candidates {
		texts[i] = st.texts[idx]
	}
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(candidates) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(candidates))
	}
	return vecs, nil
}

// findEarlierMatch returns the earliest prior candidate that is identical
// (collapsed text) or near-identical (cosine >= threshold) to the block at
// idx.
func (r *refpack) findEarlierMatch(st *state, earlier []int, idx int, vectors [][]float32, ci int) (int, bool) {
	collapsed := textnorm.CollapseWhitespace(st.texts[idx])
	for pos, prior := range earlier {
		if st.changed[prior] {
			continue // already a reference, not a valid target
		}
		if textnorm.CollapseWhitespace(st.texts[prior]) == collapsed {
			return prior, true
		}
		if embeddings.CosineSimilarity(vectors[pos], vectors[ci]) >= r.threshold {
			return prior, true
		}
	}
	return 0, false
}

// referenceText builds the short replacement for a duplicated block.
func referenceText(target int, original string) string {
	label := textnorm.CollapseWhitespace(firstLine(original))
	const maxLabel = 60
	if runes := []rune(label); len(runes) > maxLabel {
		label = string(runes[:maxLabel]) + "…"
	}
	return fmt.Sprintf("[ref:block-%d] %s (repeated content, see block %d)", target, label, target)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// totalTokens sums the estimated tokens of the working texts.
func (s *state) totalTokens() int {
	total := 0
	for _, t := range s.texts {
		total += tokens.Estimate(t)
	}
	return total
}
