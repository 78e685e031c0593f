// Package workload derives deterministic grouping keys and prompt hashes
// for savings analytics and exact-duplicate detection. Keys are pure
// functions of content: no randomness, no time component. They are used
// for grouping comparable workloads, never for security, so a truncated
// non-secret hash is acceptable here.
package workload

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// KeyInput describes one workload for grouping purposes.
type KeyInput struct {
	Path         string
	Provider     string
	Model        string
	Scenario     string // empty means ad hoc
	PromptLength int
	TaskType     string // optional
}

// lengthBucket groups prompt lengths into coarse analytics buckets.
// The bucket edges are half-open: length 499 is "0-500", length 500 is
// "500-1500".
func lengthBucket(n int) string {
	switch {
	case n < 500:
		return "0-500"
	case n < 1500:
		return "500-1500"
	case n < 4000:
		return "1500-4000"
	default:
		return "4000+"
	}
}

// ComputeKey derives the 32-hex-character workload key from the input.
// Equal inputs always yield equal keys.
func ComputeKey(in KeyInput) string {
	scenario := in.Scenario
	if scenario == "" {
		scenario = "ad_hoc"
	}

	parts := []string{
		in.Path,
		in.Provider,
		in.Model,
		scenario,
		lengthBucket(in.PromptLength),
	}
	if in.TaskType != "" {
		parts = append(parts, in.TaskType)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:32]
}

// ComputePromptHash hashes the JSON serialization of the final prompt
// object with object keys sorted, for exact-duplicate detection
// independent of workload bucketing.
func ComputePromptHash(prompt any) (string, error) {
	canonical, err := canonicalJSON(prompt)
	if err != nil {
		return "", fmt.Errorf("workload: canonicalize prompt: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips the value through an untyped representation so
// encoding/json emits object keys in sorted order regardless of the input
// struct's field order.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var untyped any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		return nil, err
	}
	return json.Marshal(untyped)
}
