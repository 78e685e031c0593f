package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectyralabs/spectyra/internal/unit"
)

func codeUnit(idx int, text string) unit.Unit {
	return unit.Unit{Index: idx, Kind: unit.KindCode, Text: text, Path: unit.PathCode}
}

func TestBuildDependencyEdgesTalkPathEmpty(t *testing.T) {
	units := []unit.Unit{
		codeUnit(0, "function add(a, b) { return a + b }"),
		codeUnit(1, "add(1, 2)"),
	}
	assert.Empty(t, BuildDependencyEdges(units, unit.PathTalk))
}

func TestDefinitionCallLinkage(t *testing.T) {
	units := []unit.Unit{
		codeUnit(0, "function add(a, b) { return a + b }"),
		codeUnit(1, "const result = add(1, 2)"),
	}

	edges := BuildDependencyEdges(units, unit.PathCode)
	require.Len(t, edges, 1)
	assert.Equal(t, Edge{I: 0, J: 1, Weight: 0.6, Type: EdgeDependency}, edges[0])
}

func TestDefinitionCallLinkageReversedOrder(t *testing.T) {
	// The caller appears before the definition; the edge is the same.
	units := []unit.Unit{
		codeUnit(0, "const result = add(1, 2)"),
		codeUnit(1, "function add(a, b) { return a + b }"),
	}

	edges := BuildDependencyEdges(units, unit.PathCode)
	require.Len(t, edges, 1)
	assert.Equal(t, Edge{I: 0, J: 1, Weight: 0.6, Type: EdgeDependency}, edges[0])
}

func TestNoLinkageWithoutSharedIdentifier(t *testing.T) {
	units := []unit.Unit{
		codeUnit(0, "function add(a, b) { return a + b }"),
		codeUnit(1, "const x = multiply(3, 4)"),
	}
	assert.Empty(t, BuildDependencyEdges(units, unit.PathCode))
}

func TestControlFlowKeywordsNotCalls(t *testing.T) {
	units := []unit.Unit{
		codeUnit(0, "function whiler(x) { return x }"),
		codeUnit(1, "while (true) { break }\nif (x) { }"),
	}
	assert.Empty(t, BuildDependencyEdges(units, unit.PathCode))
}

func TestOwnDefinitionNotACall(t *testing.T) {
	// Both units define add; the definition header itself must not count
	// as a call of the other unit's definition.
	units := []unit.Unit{
		codeUnit(0, "function add(a, b) { return a + b }"),
		codeUnit(1, "function add(a, b) { return b + a }"),
	}
	assert.Empty(t, BuildDependencyEdges(units, unit.PathCode))
}

func TestPatchCodePair(t *testing.T) {
	units := []unit.Unit{
		codeUnit(0, "function add(a, b) { return a + b }"),
		{Index: 1, Kind: unit.KindPatch, Text: "@@ -1 +1 @@\n-old\n+new", Path: unit.PathCode},
		{Index: 2, Kind: unit.KindPatch, Text: "@@ -2 +2 @@\n-x\n+y", Path: unit.PathCode},
	}

	edges := BuildDependencyEdges(units, unit.PathCode)
	require.Len(t, edges, 3)
	for _, e := range edges {
		assert.Equal(t, 0.7, e.Weight)
		assert.Equal(t, EdgeDependency, e.Type)
		assert.Less(t, e.I, e.J)
	}
}

func TestConstraintCodeWeights(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       float64
	}{
		{name: "identifier mentioned", constraint: "the add helper must stay pure", want: 0.6},
		{name: "no identifier overlap", constraint: "keep the CLI flags stable", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := []unit.Unit{
				{Index: 0, Kind: unit.KindConstraint, Text: tt.constraint, Path: unit.PathCode},
				codeUnit(1, "let add = (a, b) => a + b"),
			}
			edges := BuildDependencyEdges(units, unit.PathCode)
			require.Len(t, edges, 1)
			assert.Equal(t, tt.want, edges[0].Weight)
		})
	}
}

func TestNoDuplicateEdgeKeys(t *testing.T) {
	units := []unit.Unit{
		{Index: 0, Kind: unit.KindPatch, Text: "@@", Path: unit.PathCode},
		codeUnit(1, "function f() {}"),
		{Index: 2, Kind: unit.KindPatch, Text: "@@ more", Path: unit.PathCode},
	}
	edges := BuildDependencyEdges(units, unit.PathCode)

	seen := map[[2]int]map[EdgeType]bool{}
	for _, e := range edges {
		require.Less(t, e.I, e.J)
		key := [2]int{e.I, e.J}
		if seen[key] == nil {
			seen[key] = map[EdgeType]bool{}
		}
		require.False(t, seen[key][e.Type], "duplicate (i,j,type)")
		seen[key][e.Type] = true
	}
}
