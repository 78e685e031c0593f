package signal

import (
	"strconv"
	"strings"

	"github.com/spectyralabs/spectyra/internal/textnorm"
)

// ExtractConstraints returns the normalized constraint lines found in text,
// in input order, first occurrence kept.
func ExtractConstraints(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if !IsConstraintLine(line) {
			continue
		}
		out = append(out, textnorm.NormalizeBullet(line))
	}
	return textnorm.DedupeStrings(out)
}

// IsConstraintLine reports whether a single line matches any constraint
// pattern.
func IsConstraintLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	for _, p := range constraintPatterns {
		if p.Regex.MatchString(line) {
			return true
		}
	}
	return false
}

// ExtractFailingSignals parses structured-looking diagnostic lines into
// FailingSignal records, deduplicated by the signal key.
func ExtractFailingSignals(text string) []FailingSignal {
	var out []FailingSignal
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sig, ok := matchDiagnostic(line); ok {
			out = append(out, sig)
		}
	}
	return DedupeFailingSignals(out)
}

// matchDiagnostic tries each diagnostic pattern in order and builds a
// signal from the first match's named groups.
func matchDiagnostic(line string) (FailingSignal, bool) {
	for _, p := range diagnosticPatterns {
		m := p.Regex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sig := FailingSignal{Raw: strings.TrimSpace(line)}
		for i, name := range p.Regex.SubexpNames() {
			if i == 0 || i >= len(m) || m[i] == "" {
				continue
			}
			switch name {
			case "file":
				sig.File = textnorm.NormalizePath(m[i])
			case "line":
				if n, err := strconv.Atoi(m[i]); err == nil {
					sig.Line = n
				}
			case "code":
				sig.Code = m[i]
			case "message":
				sig.Message = strings.TrimSpace(m[i])
			}
		}
		return sig, true
	}
	return FailingSignal{}, false
}

// ExtractTouchedFiles returns the set of normalized path-looking tokens in
// text, in first-occurrence order.
func ExtractTouchedFiles(text string) []string {
	matches := pathToken.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, textnorm.NormalizePath(m))
	}
	return textnorm.DedupeStrings(paths)
}
