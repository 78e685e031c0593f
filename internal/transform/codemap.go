package transform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spectyralabs/spectyra/internal/graph"
	"github.com/spectyralabs/spectyra/internal/unit"
)

// loadBearingDegree is the summed dependency-edge weight above which a
// code unit is considered load-bearing and kept in full.
const loadBearingDegree = 1.0

var symbolLine = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?(?:function|const|let|var|class|func|type|def)\s+[A-Za-z_][A-Za-z0-9_]*.*$`)

// codemap replaces full code bodies with a symbol-level summary, keeping
// only code units that are load-bearing in the dependency graph or
// referenced by a later patch unit.
type codemap struct {
	edges []graph.Edge
}

func (c *codemap) name() string { return "codemap" }

func (c *codemap) apply(_ context.Context, st *state) (Metrics, error) {
	metrics := Metrics{TokensBefore: st.totalTokens()}

	degree := dependencyDegree(len(st.units), c.edges)
	patchAfter := lastPatchIndex(st.units)

	summarized := 0
	symbolCount := 0
	for _, idx := range st.eligible(func(u unit.Unit) bool {
		return u.Kind == unit.KindCode
	}) {
		u := st.units[idx]
		if degree[idx] >= loadBearingDegree {
			st.codemapKept++ // load-bearing, keep the full body
			continue
		}
		if patchAfter > u.Index && referencedByPatch(st, u) {
			st.codemapKept++
			continue
		}

		summary, symbols := summarizeCode(st.texts[idx], st.opts.CodemapDetailLevel)
		if symbols == 0 {
			st.codemapKept++ // nothing recognizable to summarize
			continue
		}
		st.texts[idx] = summary
		st.changed[idx] = true
		st.codemapOmitted++
		summarized++
		symbolCount += symbols
	}

	metrics.Entries = symbolCount
	metrics.TokensAfter = st.totalTokens()
	metrics.Applied = summarized > 0
	return metrics, nil
}

// dependencyDegree sums incident dependency-edge weight per unit.
func dependencyDegree(n int, edges []graph.Edge) []float64 {
	degree := make([]float64, n)
	for _, e := range edges {
		if e.Type != graph.EdgeDependency || e.I >= n || e.J >= n {
			continue
		}
		degree[e.I] += e.Weight
		degree[e.J] += e.Weight
	}
	return degree
}

// lastPatchIndex returns the highest index of a patch unit, or -1.
func lastPatchIndex(units []unit.Unit) int {
	last := -1
	for _, u := range units {
		if u.Kind == unit.KindPatch {
			last = u.Index
		}
	}
	return last
}

// referencedByPatch reports whether a later patch unit mentions an
// identifier defined in the code unit.
func referencedByPatch(st *state, code unit.Unit) bool {
	for _, u := range st.units {
		if u.Kind != unit.KindPatch || u.Index <= code.Index {
			continue
		}
		for _, sym := range symbolLine.FindAllString(st.texts[code.Index], -1) {
			name := symbolName(sym)
			if name != "" && strings.Contains(st.texts[u.Index], name) {
				return true
			}
		}
	}
	return false
}

// summarizeCode reduces a code body to its symbol lines. Detail levels:
// 0 keeps signatures only, 1 keeps full symbol lines, 2 also keeps the
// comment line directly above each symbol.
func summarizeCode(text string, detail int) (string, int) {
	lines := strings.Split(text, "\n")
	var kept []string
	symbols := 0

	for i, line := range lines {
		if !symbolLine.MatchString(line) {
			continue
		}
		symbols++
		if detail >= 2 && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if strings.HasPrefix(prev, "//") || strings.HasPrefix(prev, "#") {
				kept = append(kept, prev)
			}
		}
		if detail >= 1 {
			kept = append(kept, strings.TrimRight(line, " \t{"))
		} else {
			kept = append(kept, signatureOnly(line))
		}
	}

	if symbols == 0 {
		return text, 0
	}
	header := fmt.Sprintf("[codemap: %d symbols, bodies elided]", symbols)
	return header + "\n" + strings.Join(kept, "\n"), symbols
}

// signatureOnly trims a symbol line to its declaration head.
func signatureOnly(line string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(line), " \t{")
	if i := strings.Index(trimmed, "="); i > 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	return trimmed
}

// symbolName extracts the declared identifier from a symbol line.
func symbolName(line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	for i, f := range fields {
		switch f {
		case "function", "const", "let", "var", "class", "func", "type", "def":
			if i+1 < len(fields) {
				name := fields[i+1]
				if j := strings.IndexAny(name, "(=:<{"); j > 0 {
					name = name[:j]
				}
				return name
			}
		}
	}
	return ""
}
