// Package tokens provides token estimation shared by the transform
// pipeline and the diff/safety summaries.
package tokens

import "unicode/utf8"

// Estimate approximates the token count of content using the runes/4
// heuristic. Rune count is used instead of byte count so multi-byte
// characters are not over-counted.
func Estimate(content string) int {
	if len(content) == 0 {
		return 0
	}
	n := utf8.RuneCountInString(content) / 4
	if n == 0 {
		return 1
	}
	return n
}

// Stats holds before/after token counts for a transform or a whole request.
type Stats struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Saved returns the number of tokens saved.
func (s Stats) Saved() int {
	return s.Before - s.After
}

// PercentSaved returns the percentage reduction in [0,100].
func (s Stats) PercentSaved() float64 {
	if s.Before == 0 {
		return 0
	}
	return float64(s.Saved()) / float64(s.Before) * 100
}
