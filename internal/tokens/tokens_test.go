package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty", content: "", want: 0},
		{name: "short text rounds up to one", content: "hi", want: 1},
		{name: "eight runes", content: "abcdefgh", want: 2},
		{name: "multibyte runes counted once", content: "日本語テキスト処理", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.content))
		})
	}
}

func TestStats(t *testing.T) {
	s := Stats{Before: 200, After: 150}
	assert.Equal(t, 50, s.Saved())
	assert.InDelta(t, 25.0, s.PercentSaved(), 0.001)

	zero := Stats{}
	assert.Equal(t, 0.0, zero.PercentSaved())
}
