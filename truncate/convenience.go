package truncate

import (
	"strings"
	"unicode/utf8"

	"github.com/randalmurphal/ollamakit/tokens"
)

// ToTokens cuts text to a token budget using end truncation and the
// default estimating counter.
func ToTokens(text string, maxTokens int) string {
	out, _ := NewFromEnd().Truncate(text, maxTokens)
	return out
}

// ToModelWindow cuts text to fit a model's context window with room
// held back for the response. The window comes from the model family
// table; reserve is the token count kept free for generation.
func ToModelWindow(text, model string, reserve int) string {
	budget := tokens.GetModelLimit(model) - reserve
	if budget <= 0 {
		return ""
	}
	return ToTokens(text, budget)
}

// ToLines keeps at most maxLines lines, marking the cut.
func ToLines(text string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.SplitN(text, "\n", maxLines+1)
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") + "\n..."
}

// ToLength keeps at most maxLen runes, replacing the overflow with an
// ellipsis when there is room for one. Runes, not bytes, so multi-byte
// characters never split.
func ToLength(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Smart cuts at a sentence end when one lands in the back half of the
// budget, then at a word break, then mid-word as the last resort.
func Smart(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := maxLen - 3
	if cut < 1 {
		return string(runes[:maxLen])
	}

	for i := cut; i > maxLen/2; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return string(runes[:i+1])
		}
	}
	for i := cut; i > maxLen/2; i-- {
		if runes[i] == ' ' || runes[i] == '\n' {
			return string(runes[:i]) + "..."
		}
	}
	return string(runes[:cut]) + "..."
}
