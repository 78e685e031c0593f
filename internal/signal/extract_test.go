package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractConstraints(t *testing.T) {
	text := `Please refactor the handler.

- The response must stay backwards compatible
- use the existing logger
Never block the event loop.
Some narrative sentence here.
- The response must stay backwards compatible`

	got := ExtractConstraints(text)
	require.Len(t, got, 3)
	assert.Equal(t, "The response must stay backwards compatible", got[0])
	assert.Equal(t, "use the existing logger", got[1])
	assert.Equal(t, "Never block the event loop.", got[2])
}

func TestExtractConstraintsDeterministic(t *testing.T) {
	text := "- must not change the schema\n- should log every request"
	first := ExtractConstraints(text)
	second := ExtractConstraints(text)
	assert.Equal(t, first, second)
}

func TestExtractConstraintsEmpty(t *testing.T) {
	assert.Empty(t, ExtractConstraints("just a plain description of the feature"))
	assert.Empty(t, ExtractConstraints(""))
}

func TestExtractFailingSignals(t *testing.T) {
	text := `running tests...
src/server.go:42:5: undefined: handleRequest
--- FAIL: TestOptimize (0.03s)
error[E0308]: mismatched types
TypeError: cannot read property of undefined
Error: connection refused
plain output line`

	got := ExtractFailingSignals(text)
	require.Len(t, got, 5)

	assert.Equal(t, "src/server.go", got[0].File)
	assert.Equal(t, 42, got[0].Line)
	assert.Equal(t, "undefined: handleRequest", got[0].Message)

	assert.Equal(t, "TestOptimize", got[1].Code)
	assert.Equal(t, "E0308", got[2].Code)
	assert.Equal(t, "TypeError", got[3].Code)
	assert.Equal(t, "connection refused", got[4].Message)
}

func TestFailingSignalKey(t *testing.T) {
	full := FailingSignal{File: `src\server.go`, Line: 42, Code: "E01", Raw: "x"}
	same := FailingSignal{File: "src/server.go", Line: 42, Code: "e01", Raw: "y"}
	assert.Equal(t, full.Key(), same.Key())

	// Raw fallback collapses whitespace and truncates to 80 chars, so long
	// near-identical snippets dedupe together.
	long := "Error:  " + repeat("x", 100) + "tail-a"
	long2 := "Error: " + repeat("x", 100) + "tail-b"
	a := FailingSignal{Raw: long}
	b := FailingSignal{Raw: long2}
	assert.Equal(t, a.Key(), b.Key())
}

func TestDedupeFailingSignalsIdempotent(t *testing.T) {
	in := []FailingSignal{
		{File: "a.go", Line: 1, Code: "C1", Raw: "a.go:1: boom"},
		{File: "a.go", Line: 1, Code: "C1", Raw: "a.go:1: boom again"},
		{Raw: "Error: something"},
	}
	once := DedupeFailingSignals(in)
	require.Len(t, once, 2)
	assert.Equal(t, once, DedupeFailingSignals(once))
}

func TestExtractTouchedFiles(t *testing.T) {
	text := `I changed src/server.go and pkg\util\strings.go.
Also see src/server.go, plus docs/readme.md:`

	got := ExtractTouchedFiles(text)
	assert.Equal(t, []string{"src/server.go", "pkg/util/strings.go", "docs/readme.md"}, got)
}

func TestExtractTouchedFilesEmpty(t *testing.T) {
	assert.Empty(t, ExtractTouchedFiles("no paths in here"))
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
