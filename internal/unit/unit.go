// Package unit segments a request's content into ordered, typed semantic
// units. Units are the nodes of the relevance graph: they are created once
// per request, never merged or reordered, and the 0-based index assigned at
// segmentation time is their sole identity downstream.
package unit

import (
	"regexp"
	"strings"

	"github.com/spectyralabs/spectyra/internal/signal"
)

// Kind classifies a semantic unit.
type Kind string

const (
	KindNarrative  Kind = "narrative"
	KindConstraint Kind = "constraint"
	KindCode       Kind = "code"
	KindPatch      Kind = "patch"
	KindTool       Kind = "tool"
)

// PathContext declares which optimization path a request is on.
type PathContext string

const (
	PathTalk PathContext = "talk"
	PathCode PathContext = "code"
)

// Origin records which side of the conversation produced a block.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
	OriginTool      Origin = "tool"
)

// Block is a raw inbound content block before classification.
type Block struct {
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
}

// Unit is an indivisible, typed, ordered segment of request content.
type Unit struct {
	Index int         `json:"index"`
	Kind  Kind        `json:"kind"`
	Text  string      `json:"text"`
	Path  PathContext `json:"path,omitempty"`
}

var (
	fenceMarker = regexp.MustCompile("(?m)^```")
	diffMarker  = regexp.MustCompile(`(?m)^(diff --git|@@ |--- |\+\+\+ |Index: )`)
)

// Segment classifies each block into exactly one unit. The unit index is
// the block's position in the input order.
func Segment(blocks []Block, path PathContext) []Unit {
	units := make([]Unit, 0, len(blocks))
	for i, b := range blocks {
		units = append(units, Unit{
			Index: i,
			Kind:  classify(b),
			Text:  b.Text,
			Path:  path,
		})
	}
	return units
}

// SegmentText splits raw text into blocks (fenced sections become their own
// blocks, prose splits on blank lines) and segments the result. Used when
// the caller supplies a flat string instead of structured blocks.
func SegmentText(text string, path PathContext, origin Origin) []Unit {
	return Segment(splitBlocks(text, origin), path)
}

// classify applies shallow structural cues in priority order: diff markers,
// code fences, constraint patterns, then provenance.
func classify(b Block) Kind {
	text := strings.TrimSpace(b.Text)
	switch {
	case diffMarker.MatchString(text):
		return KindPatch
	case fenceMarker.MatchString(text) || looksLikeCode(text):
		return KindCode
	case signal.IsConstraintLine(text):
		return KindConstraint
	case b.Origin == OriginTool:
		return KindTool
	default:
		return KindNarrative
	}
}

// looksLikeCode detects unfenced code by line shape: a majority of lines
// ending in braces/semicolons or starting with indentation plus a keyword.
func looksLikeCode(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return false
	}
	codeish := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "}") ||
			strings.HasSuffix(trimmed, ";") ||
			strings.HasPrefix(trimmed, "func ") || strings.HasPrefix(trimmed, "function ") ||
			strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "let ") ||
			strings.HasPrefix(trimmed, "var ") || strings.HasPrefix(trimmed, "class ") ||
			strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "return ") {
			codeish++
		}
	}
	return codeish*2 > len(lines)
}

// splitBlocks cuts raw text into blocks: each fenced section is one block,
// prose between fences splits on blank lines.
func splitBlocks(text string, origin Origin) []Block {
	var blocks []Block
	lines := strings.Split(text, "\n")

	var buf []string
	inFence := false
	flush := func() {
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if joined == "" {
			return
		}
		blocks = append(blocks, Block{Text: joined, Origin: origin})
	}

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				buf = append(buf, line)
				inFence = false
				flush()
				continue
			}
			flush()
			inFence = true
			buf = append(buf, line)
			continue
		}
		if !inFence && strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return blocks
}
