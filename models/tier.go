package models

import (
	"strconv"
	"strings"
)

// Tier represents a model capability tier.
type Tier int

// Tier constants representing model capability levels.
const (
	TierFast Tier = iota
	TierDefault
	TierHeavy
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierDefault:
		return "default"
	case TierHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// TierFor buckets a model by its parameter size tag. Untagged names land
// in the default tier.
func TierFor(name string) Tier {
	size := ParamSize(name)
	switch {
	case size == 0:
		return TierDefault
	case size >= 27:
		return TierHeavy
	case size <= 4:
		return TierFast
	default:
		return TierDefault
	}
}

// ParamSize extracts the parameter count in billions from a model tag.
// "llama3.1:70b" yields 70 and "mixtral:8x7b" yields 56. Names without a
// size tag, like "llama3.1" or "mistral:latest", yield 0.
func ParamSize(name string) float64 {
	_, tag, ok := strings.Cut(name, ":")
	if !ok {
		return 0
	}
	// Variant and quantization suffixes follow the size, e.g.
	// "3b-instruct-q4_K_M".
	size, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")

	experts := 1.0
	if pre, post, ok := strings.Cut(size, "x"); ok {
		n, err := strconv.ParseFloat(pre, 64)
		if err != nil {
			return 0
		}
		experts = n
		size = post
	}

	size, found := strings.CutSuffix(size, "b")
	if !found {
		return 0
	}
	n, err := strconv.ParseFloat(size, 64)
	if err != nil {
		return 0
	}
	return experts * n
}
