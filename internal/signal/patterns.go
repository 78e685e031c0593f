package signal

import "regexp"

// Pattern is a named extraction rule. Keeping the rules in explicit tables
// (rather than ad hoc matching) makes extraction behavior independently
// testable and versionable.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// constraintPatterns match bullet-style or imperative requirement lines.
// A line matching any pattern is treated as a constraint.
var constraintPatterns = []Pattern{
	{Name: "bullet_requirement", Regex: regexp.MustCompile(`(?i)^\s*[-*\x{2022}]\s*.*\b(must|should|never|always|don't|do not|avoid|ensure|require|keep|use|prefer)\b`)},
	{Name: "imperative_must", Regex: regexp.MustCompile(`(?i)^\s*(the\s+\w+\s+)?(must|should)\s+`)},
	{Name: "negative_imperative", Regex: regexp.MustCompile(`(?i)^\s*(never|don't|do not|avoid)\s+`)},
	{Name: "ensure_that", Regex: regexp.MustCompile(`(?i)^\s*(ensure|make sure|guarantee)\s+`)},
	{Name: "only_when", Regex: regexp.MustCompile(`(?i)\bonly\s+(if|when|use)\b`)},
}

// diagnosticPatterns match structured-looking failure lines. Order matters:
// the first matching pattern wins, so the most specific shapes come first.
var diagnosticPatterns = []Pattern{
	// path/to/file.go:12:5: message  (line 12, optional column)
	{Name: "file_line_message", Regex: regexp.MustCompile(`^\s*(?P<file>[\w./\\-]+\.\w+):(?P<line>\d+)(?::\d+)?:\s*(?P<message>.+)$`)},
	// error[E0308]: mismatched types
	{Name: "coded_error", Regex: regexp.MustCompile(`(?i)^\s*error\[(?P<code>[A-Z]+\d+)\]:\s*(?P<message>.+)$`)},
	// FAIL: TestFoo / --- FAIL: TestFoo (0.01s)
	{Name: "test_failure", Regex: regexp.MustCompile(`^\s*(?:---\s*)?FAIL[:\s]+(?P<code>\S+)(?:\s+(?P<message>.*))?$`)},
	// AssertionError: expected 3 to equal 4
	{Name: "named_exception", Regex: regexp.MustCompile(`^\s*(?P<code>[A-Z]\w*(?:Error|Exception|Panic)):\s*(?P<message>.+)$`)},
	// generic "Error: something broke"
	{Name: "generic_error", Regex: regexp.MustCompile(`(?i)^\s*error:\s*(?P<message>.+)$`)},
}

// pathToken matches path-looking tokens inside prose or tool output: at
// least one separator and a file extension, optionally backslash separated.
var pathToken = regexp.MustCompile(`(?:[\w.-]+[/\\])+[\w.-]+\.\w{1,8}`)
