package transform

import (
	"context"
	"regexp"

	"github.com/spectyralabs/spectyra/internal/spectral"
	"github.com/spectyralabs/spectyra/internal/unit"
)

// phraseEntry maps a recurring instructional phrase to its canonical
// short token. The table is ordered: longer, more specific phrases come
// before their substrings so a single pass is unambiguous.
type phraseEntry struct {
	pattern *regexp.Regexp
	token   string
}

var phrasebookTable = []phraseEntry{
	{regexp.MustCompile(`(?i)please make sure( that)? you`), "ensure:"},
	{regexp.MustCompile(`(?i)please make sure( that)?`), "ensure:"},
	{regexp.MustCompile(`(?i)it is (very )?important (that|to)`), "important:"},
	{regexp.MustCompile(`(?i)as (i|we) mentioned (earlier|before|previously),?`), "(see above)"},
	{regexp.MustCompile(`(?i)do not make any changes to`), "keep:"},
	{regexp.MustCompile(`(?i)without breaking (any )?existing (functionality|behavior|tests)`), "non-breaking"},
	{regexp.MustCompile(`(?i)take (your time|a deep breath) and`), ""},
	{regexp.MustCompile(`(?i)think (carefully|step by step) (about|through)`), "consider"},
	{regexp.MustCompile(`(?i)feel free to`), "may"},
	{regexp.MustCompile(`(?i)in order to`), "to"},
}

// phrasebook substitutes recurring instructional phrases with short
// canonical tokens, reducing restated boilerplate. It never runs on an
// unstable verdict: rephrasing unresolved ambiguity risks corrupting it.
type phrasebook struct{}

func (p *phrasebook) name() string { return "phrasebook" }

func (p *phrasebook) apply(_ context.Context, st *state) (Metrics, error) {
	metrics := Metrics{TokensBefore: st.totalTokens()}

	if st.report.Recommendation == spectral.RecommendUnstable {
		metrics.TokensAfter = metrics.TokensBefore
		return metrics, nil
	}

	substitutions := 0
	for _, idx := range st.eligible(func(u unit.Unit) bool {
		return u.Kind == unit.KindNarrative || u.Kind == unit.KindConstraint
	}) {
		text := st.texts[idx]
		unitSubs := 0
		for _, entry := range phrasebookTable {
			matches := entry.pattern.FindAllStringIndex(text, -1)
			if len(matches) == 0 {
				continue
			}
			text = entry.pattern.ReplaceAllString(text, entry.token)
			unitSubs += len(matches)
		}
		if unitSubs > 0 {
			st.texts[idx] = text
			st.changed[idx] = true
			substitutions += unitSubs
		}
	}

	metrics.Entries = substitutions
	metrics.TokensAfter = st.totalTokens()
	metrics.Applied = substitutions > 0
	return metrics, nil
}
