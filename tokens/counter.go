package tokens

import (
	"unicode/utf8"

	"github.com/randalmurphal/ollamakit/models"
)

// DefaultCharsPerToken is the estimation ratio. Llama-family tokenizers
// average out near 4 characters per token for English text.
const DefaultCharsPerToken = 4.0

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit reports whether the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter derives token counts from rune counts. Good enough
// for budgeting; the server's own tokenizer is the only exact answer.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	CharsPerToken float64
}

// NewEstimatingCounter creates a counter with the default ratio.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{CharsPerToken: DefaultCharsPerToken}
}

// NewEstimatingCounterWithRatio creates a counter with a custom ratio.
// Ratios at or below zero fall back to the default.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count estimates tokens from the rune count, rounded to nearest.
func (c *EstimatingCounter) Count(text string) int {
	runes := utf8.RuneCountInString(text)
	return int(float64(runes)/c.CharsPerToken + 0.5)
}

// FitsInLimit reports whether the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

var estimator = NewEstimatingCounter()

// EstimateTokens counts with the default ratio.
func EstimateTokens(text string) int {
	return estimator.Count(text)
}

// GetModelLimit returns the context window for a model, looked up by
// its family. Unknown models get a conservative default.
func GetModelLimit(model string) int {
	return models.Lookup(model).ContextLength
}
