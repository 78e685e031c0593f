package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBullet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dash bullet", in: "- keep the API stable", want: "keep the API stable"},
		{name: "star bullet", in: "*   use   pgx  ", want: "use pgx"},
		{name: "unicode bullet", in: "• no breaking changes", want: "no breaking changes"},
		{name: "no bullet", in: "  plain   text ", want: "plain text"},
		{name: "bare marker preserved", in: " - ", want: "-"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBullet(tt.in))
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "backslashes", in: `src\pkg\main.go`, want: "src/pkg/main.go"},
		{name: "double slashes", in: "src//pkg///main.go", want: "src/pkg/main.go"},
		{name: "trailing punctuation", in: "src/main.go:", want: "src/main.go"},
		{name: "trailing period and quote", in: `"src/main.go".`, want: `"src/main.go`},
		{name: "whitespace", in: "  src/main.go  ", want: "src/main.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.in))
		})
	}
}

func TestDedupeOrdered(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	got := DedupeStrings(in)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// Idempotence: a second pass is a no-op.
	assert.Equal(t, got, DedupeStrings(got))
}

func TestDedupeOrderedCustomKey(t *testing.T) {
	type item struct{ id, payload string }
	in := []item{{"x", "first"}, {"y", "second"}, {"x", "third"}}
	got := DedupeOrdered(in, func(i item) string { return i.id })
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].payload)
	assert.Equal(t, "second", got[1].payload)
}

func TestDedupeSentencesKeepLast(t *testing.T) {
	got := DedupeSentencesKeepLast([]string{"a", "b", "a"})
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestDedupeSentencesKeepLastTrimsAndSkipsEmpty(t *testing.T) {
	got := DedupeSentencesKeepLast([]string{"  fix the bug  ", "", "fix the bug", "add tests"})
	assert.Equal(t, []string{"fix the bug", "add tests"}, got)
}
