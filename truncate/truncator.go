package truncate

import "github.com/randalmurphal/ollamakit/tokens"

// Strategy selects which part of the text survives truncation.
type Strategy int

const (
	// FromEnd drops the tail and keeps the head (default).
	FromEnd Strategy = iota

	// FromMiddle drops the middle and keeps both ends.
	FromMiddle

	// FromStart drops the head and keeps the tail.
	FromStart
)

// Default truncation markers. End and start truncation use a plain
// ellipsis; middle truncation marks the seam on its own line.
const (
	DefaultEndSuffix    = "..."
	DefaultMiddleSuffix = "\n...[content truncated]...\n"
	DefaultStartSuffix  = "..."
)

// Truncator cuts text down to a token budget, marking the cut with a
// suffix. The suffix itself spends part of the budget, so results fit
// the limit marker included.
type Truncator struct {
	counter  tokens.Counter
	strategy Strategy
	suffix   string
}

// New creates a truncator using the given strategy and its default
// marker. Token counts come from the estimating counter unless
// WithCounter replaces it.
func New(strategy Strategy) *Truncator {
	t := &Truncator{
		counter:  tokens.NewEstimatingCounter(),
		strategy: strategy,
		suffix:   DefaultEndSuffix,
	}
	if strategy == FromMiddle {
		t.suffix = DefaultMiddleSuffix
	}
	return t
}

// NewFromEnd creates a truncator that keeps the head of the text.
func NewFromEnd() *Truncator { return New(FromEnd) }

// NewFromMiddle creates a truncator that keeps both ends of the text.
func NewFromMiddle() *Truncator { return New(FromMiddle) }

// NewFromStart creates a truncator that keeps the tail of the text.
func NewFromStart() *Truncator { return New(FromStart) }

// WithCounter replaces the token counter.
func (t *Truncator) WithCounter(counter tokens.Counter) *Truncator {
	t.counter = counter
	return t
}

// WithSuffix replaces the truncation marker.
func (t *Truncator) WithSuffix(suffix string) *Truncator {
	t.suffix = suffix
	return t
}

// Truncate cuts text to fit maxTokens. The second return reports
// whether anything was cut.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	budget := maxTokens - t.counter.Count(t.suffix)
	if budget <= 0 {
		return t.suffix, true
	}

	runes := []rune(text)
	switch t.strategy {
	case FromMiddle:
		return t.keepEnds(runes, budget), true
	case FromStart:
		n := tailRunes(t.counter, runes, budget)
		return t.suffix + string(runes[len(runes)-n:]), true
	default:
		n := headRunes(t.counter, runes, budget)
		return string(runes[:n]) + t.suffix, true
	}
}

// Strategy returns the configured strategy.
func (t *Truncator) Strategy() Strategy { return t.strategy }

// Suffix returns the configured truncation marker.
func (t *Truncator) Suffix() string { return t.suffix }

// keepEnds splits the budget between head and tail and joins them
// around the marker. When a counter makes the halves meet, the tail is
// clipped so no text appears twice.
func (t *Truncator) keepEnds(runes []rune, budget int) string {
	head := headRunes(t.counter, runes, budget/2)
	tail := tailRunes(t.counter, runes, budget-budget/2)
	if head+tail > len(runes) {
		tail = len(runes) - head
	}
	return string(runes[:head]) + t.suffix + string(runes[len(runes)-tail:])
}

// headRunes returns the length in runes of the longest prefix that
// fits the token budget. Binary search keeps counter calls at O(log n).
func headRunes(c tokens.Counter, runes []rune, budget int) int {
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if c.FitsInLimit(string(runes[:mid]), budget) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// tailRunes is the suffix-side counterpart of headRunes.
func tailRunes(c tokens.Counter, runes []rune, budget int) int {
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if c.FitsInLimit(string(runes[len(runes)-mid:]), budget) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}
