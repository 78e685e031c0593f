// Package textnorm provides pure text normalization and deduplication
// primitives used by every later pipeline stage. All functions are
// deterministic and total: identical input always yields identical output
// and there is no failure mode.
package textnorm

import (
	"regexp"
	"sort"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	bulletMarker  = regexp.MustCompile(`^[-*\x{2022}]\s*`)
	slashRun      = regexp.MustCompile(`/{2,}`)
)

// CollapseWhitespace replaces every internal whitespace run with a single
// space and trims the result.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeBullet collapses internal whitespace and strips a single leading
// bullet marker ("-", "*", or "•"). If stripping leaves nothing, the
// collapsed text is returned unchanged so a bare marker line is preserved.
func NormalizeBullet(line string) string {
	collapsed := CollapseWhitespace(line)
	stripped := strings.TrimSpace(bulletMarker.ReplaceAllString(collapsed, ""))
	if stripped == "" {
		return collapsed
	}
	return stripped
}

// NormalizePath trims the path, strips trailing punctuation, converts
// backslashes to forward slashes, and collapses repeated slashes.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, ".,;:!?)\"'`")
	p = strings.ReplaceAll(p, `\`, "/")
	p = slashRun.ReplaceAllString(p, "/")
	return strings.TrimSpace(p)
}

// DedupeOrdered returns items in their original order, keeping only the
// first occurrence per key. O(n) with a seen-key set.
func DedupeOrdered[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// DedupeStrings deduplicates a string slice using the value itself as key.
func DedupeStrings(items []string) []string {
	return DedupeOrdered(items, func(s string) string { return s })
}

// DedupeSentencesKeepLast keeps exactly one occurrence of each distinct
// trimmed sentence, positioned at its last occurrence, re-sorted by that
// last index. A user who repeats a request verbatim is represented once, at
// the most recent point, not the first.
func DedupeSentencesKeepLast(lines []string) []string {
	lastIdx := make(map[string]int, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lastIdx[trimmed] = i
	}

	type entry struct {
		text string
		idx  int
	}
	entries := make([]entry, 0, len(lastIdx))
	for text, idx := range lastIdx {
		entries = append(entries, entry{text: text, idx: idx})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].idx < entries[b].idx })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}
