// Package signal extracts structured records from free-form request text:
// constraints, failing-test/diagnostic signals, and touched file paths.
// Extraction is heuristic and pattern based but strictly deterministic;
// unmatched text yields empty results rather than errors.
package signal

import (
	"strconv"
	"strings"

	"github.com/spectyralabs/spectyra/internal/textnorm"
)

// FailingSignal is a structured diagnostic extracted from tool output or
// conversation text. All fields are optional; Raw always carries the
// matched line.
type FailingSignal struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// rawKeyLimit truncates the raw-text fallback key. The key is intentionally
// short and non-reversible: near-identical long snippets collapse to the
// same key and are treated as duplicates.
const rawKeyLimit = 80

// Key returns the dedup key for the signal. When file, line, and code are
// all present the normalized triple identifies the signal; otherwise the
// whitespace-collapsed raw text truncated to 80 characters is used.
func (s FailingSignal) Key() string {
	if s.File != "" && s.Line > 0 && s.Code != "" {
		return textnorm.NormalizePath(s.File) + "|" + strconv.Itoa(s.Line) + "|" + strings.ToLower(s.Code)
	}
	raw := textnorm.CollapseWhitespace(s.Raw)
	if len(raw) > rawKeyLimit {
		raw = raw[:rawKeyLimit]
	}
	return raw
}

// DedupeFailingSignals removes duplicate signals, keeping the first
// occurrence per key in original order.
func DedupeFailingSignals(items []FailingSignal) []FailingSignal {
	return textnorm.DedupeOrdered(items, FailingSignal.Key)
}
