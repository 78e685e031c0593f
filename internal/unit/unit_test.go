package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentClassification(t *testing.T) {
	blocks := []Block{
		{Text: "Please fix the login handler.", Origin: OriginUser},
		{Text: "- must not change the public API", Origin: OriginUser},
		{Text: "```go\nfunc add(a, b int) int { return a + b }\n```", Origin: OriginUser},
		{Text: "diff --git a/x.go b/x.go\n@@ -1,2 +1,2 @@\n-old\n+new", Origin: OriginAssistant},
		{Text: "exit status 1", Origin: OriginTool},
	}

	units := Segment(blocks, PathCode)
	require.Len(t, units, 5)

	assert.Equal(t, KindNarrative, units[0].Kind)
	assert.Equal(t, KindConstraint, units[1].Kind)
	assert.Equal(t, KindCode, units[2].Kind)
	assert.Equal(t, KindPatch, units[3].Kind)
	assert.Equal(t, KindTool, units[4].Kind)

	for i, u := range units {
		assert.Equal(t, i, u.Index)
		assert.Equal(t, PathCode, u.Path)
	}
}

func TestSegmentUnfencedCode(t *testing.T) {
	blocks := []Block{
		{Text: "function add(a, b) {\n  return a + b;\n}", Origin: OriginUser},
	}
	units := Segment(blocks, PathCode)
	require.Len(t, units, 1)
	assert.Equal(t, KindCode, units[0].Kind)
}

func TestSegmentText(t *testing.T) {
	text := "Fix the parser.\n\n```\nconst x = parse(input)\n```\n\n- must keep the CLI flags stable"

	units := SegmentText(text, PathCode, OriginUser)
	require.Len(t, units, 3)
	assert.Equal(t, KindNarrative, units[0].Kind)
	assert.Equal(t, KindCode, units[1].Kind)
	assert.Equal(t, KindConstraint, units[2].Kind)
}

func TestSegmentTextEmpty(t *testing.T) {
	assert.Empty(t, SegmentText("", PathTalk, OriginUser))
	assert.Empty(t, SegmentText("\n\n\n", PathTalk, OriginUser))
}

func TestSegmentIndexStability(t *testing.T) {
	blocks := []Block{
		{Text: "a", Origin: OriginUser},
		{Text: "b", Origin: OriginUser},
	}
	first := Segment(blocks, PathTalk)
	second := Segment(blocks, PathTalk)
	assert.Equal(t, first, second)
}
