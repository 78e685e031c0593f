package workload

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestComputeKeyShapeAndDeterminism(t *testing.T) {
	in := KeyInput{
		Path:         "code",
		Provider:     "openai",
		Model:        "gpt-4o",
		Scenario:     "code_review",
		PromptLength: 1200,
		TaskType:     "refactor",
	}

	key := ComputeKey(in)
	assert.Regexp(t, hex32, key)
	assert.Equal(t, key, ComputeKey(in))
}

func TestComputeKeyAdHocScenario(t *testing.T) {
	withScenario := ComputeKey(KeyInput{Path: "talk", Provider: "p", Model: "m", Scenario: "s"})
	adHoc := ComputeKey(KeyInput{Path: "talk", Provider: "p", Model: "m"})
	explicit := ComputeKey(KeyInput{Path: "talk", Provider: "p", Model: "m", Scenario: "ad_hoc"})

	assert.NotEqual(t, withScenario, adHoc)
	assert.Equal(t, explicit, adHoc)
}

func TestLengthBucketBoundaries(t *testing.T) {
	tests := []struct {
		length int
		want   string
	}{
		{0, "0-500"},
		{499, "0-500"},
		{500, "500-1500"},
		{1499, "500-1500"},
		{1500, "1500-4000"},
		{3999, "1500-4000"},
		{4000, "4000+"},
		{100000, "4000+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lengthBucket(tt.length), "length %d", tt.length)
	}
}

func TestComputeKeyBucketChangesKey(t *testing.T) {
	a := ComputeKey(KeyInput{Path: "code", Provider: "p", Model: "m", PromptLength: 499})
	b := ComputeKey(KeyInput{Path: "code", Provider: "p", Model: "m", PromptLength: 500})
	assert.NotEqual(t, a, b)

	// Same bucket, same key.
	c := ComputeKey(KeyInput{Path: "code", Provider: "p", Model: "m", PromptLength: 501})
	assert.Equal(t, b, c)
}

func TestComputePromptHashKeyOrderIndependent(t *testing.T) {
	type promptA struct {
		Model    string `json:"model"`
		Messages string `json:"messages"`
	}
	type promptB struct {
		Messages string `json:"messages"`
		Model    string `json:"model"`
	}

	ha, err := ComputePromptHash(promptA{Model: "m", Messages: "hi"})
	require.NoError(t, err)
	hb, err := ComputePromptHash(promptB{Model: "m", Messages: "hi"})
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestComputePromptHashDistinguishesContent(t *testing.T) {
	ha, err := ComputePromptHash(map[string]string{"m": "a"})
	require.NoError(t, err)
	hb, err := ComputePromptHash(map[string]string{"m": "b"})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}
