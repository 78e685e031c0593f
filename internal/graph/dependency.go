package graph

import (
	"regexp"
	"strings"

	"github.com/spectyralabs/spectyra/internal/unit"
)

// Dependency edge weights. A patch touching code is the strongest
// structural link; a constraint that literally mentions an identifier from
// the code beats one that is only topically adjacent.
const (
	weightPatchCode       = 0.7
	weightConstraintMatch = 0.6
	weightConstraintNear  = 0.5
	weightDefCall         = 0.6
)

var (
	identifierToken = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]{2,}`)
	definitionDecl  = regexp.MustCompile(`\b(?:function|const|let|var|class)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	callSite        = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// callKeywords are control-flow tokens that look like call sites but are
// not.
var callKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
}

// BuildDependencyEdges computes structural dependency edges between unit
// pairs using per-kind heuristics. Only the code path has structural
// dependencies; on the talk path the builder returns nothing.
func BuildDependencyEdges(units []unit.Unit, path unit.PathContext) []Edge {
	if path != unit.PathCode {
		return nil
	}

	set := newEdgeSet()
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			a, b := units[i], units[j]

			if w := pairWeight(a, b); w > 0 {
				set.add(a.Index, b.Index, w, EdgeDependency)
			}
		}
	}
	return set.list()
}

// pairWeight evaluates the dependency heuristics for an unordered unit
// pair. Rules are checked from both directions.
func pairWeight(a, b unit.Unit) float64 {
	if w := directedWeight(a, b); w > 0 {
		return w
	}
	return directedWeight(b, a)
}

func directedWeight(a, b unit.Unit) float64 {
	switch {
	case a.Kind == unit.KindPatch && (b.Kind == unit.KindCode || b.Kind == unit.KindPatch):
		return weightPatchCode

	case a.Kind == unit.KindConstraint && (b.Kind == unit.KindCode || b.Kind == unit.KindPatch):
		if constraintMentionsIdentifier(a.Text, b.Text) {
			return weightConstraintMatch
		}
		// Topically adjacent even without a literal match, but weaker.
		return weightConstraintNear

	case a.Kind == unit.KindCode && b.Kind == unit.KindCode:
		if definesAndCalls(a.Text, b.Text) || definesAndCalls(b.Text, a.Text) {
			return weightDefCall
		}
	}
	return 0
}

// constraintMentionsIdentifier reports whether the code text contains an
// identifier-shaped token that also appears, lower-cased, in the
// constraint text.
func constraintMentionsIdentifier(constraint, code string) bool {
	lowered := strings.ToLower(constraint)
	for _, tok := range identifierToken.FindAllString(code, -1) {
		if strings.Contains(lowered, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// definesAndCalls reports whether defText defines an identifier that
// callText calls. The caller's own definitions and control-flow keywords
// are excluded from the call set.
func definesAndCalls(defText, callText string) bool {
	defs := definedIdentifiers(defText)
	if len(defs) == 0 {
		return false
	}
	callerDefs := definedIdentifiers(callText)

	for _, m := range callSite.FindAllStringSubmatch(callText, -1) {
		name := m[1]
		if _, kw := callKeywords[name]; kw {
			continue
		}
		if _, own := callerDefs[name]; own {
			continue
		}
		if _, ok := defs[name]; ok {
			return true
		}
	}
	return false
}

func definedIdentifiers(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range definitionDecl.FindAllStringSubmatch(text, -1) {
		out[m[1]] = struct{}{}
	}
	return out
}
