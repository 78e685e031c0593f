// Package graph builds the weighted relevance/dependency graph over
// semantic units. Each builder is a pure function from units to edges;
// builders are combined by concatenation and may overlap in (i,j) but
// never in edge type.
package graph

import "sort"

// EdgeType categorizes an edge.
type EdgeType string

const (
	EdgeDependency    EdgeType = "dependency"
	EdgeSimilarity    EdgeType = "similarity"
	EdgeContradiction EdgeType = "contradiction"
)

// Edge is an undirected weighted edge between two units. Invariants: I < J,
// Weight in (0,1], and no two edges share the same (I, J, Type). A zero
// weight is never emitted; absence means no edge.
type Edge struct {
	I      int      `json:"i"`
	J      int      `json:"j"`
	Weight float64  `json:"weight"`
	Type   EdgeType `json:"type"`
}

// edgeKey identifies an edge for dedup purposes.
type edgeKey struct {
	i, j int
	typ  EdgeType
}

// edgeSet accumulates edges with (i,j,type) dedup and i<j normalization.
// The first weight recorded for a key wins.
type edgeSet struct {
	seen  map[edgeKey]struct{}
	edges []Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: make(map[edgeKey]struct{})}
}

// add records an edge, normalizing index order and dropping zero weights
// and self-loops.
func (s *edgeSet) add(i, j int, weight float64, typ EdgeType) {
	if i == j || weight <= 0 {
		return
	}
	if i > j {
		i, j = j, i
	}
	if weight > 1 {
		weight = 1
	}
	key := edgeKey{i: i, j: j, typ: typ}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.edges = append(s.edges, Edge{I: i, J: j, Weight: weight, Type: typ})
}

// list returns the accumulated edges sorted by (i, j, type) so builder
// output is deterministic regardless of evaluation order.
func (s *edgeSet) list() []Edge {
	sort.Slice(s.edges, func(a, b int) bool {
		ea, eb := s.edges[a], s.edges[b]
		if ea.I != eb.I {
			return ea.I < eb.I
		}
		if ea.J != eb.J {
			return ea.J < eb.J
		}
		return ea.Type < eb.Type
	})
	return s.edges
}
