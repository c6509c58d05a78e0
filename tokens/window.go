package tokens

// MessageOverhead approximates the chat template framing around one
// message: role header, separators, and the trailing generation prompt
// amortized across the transcript.
const MessageOverhead = 4

// Window sizes prompts against a model's context window. Local servers
// do not reject oversized prompts; they silently drop the oldest turns,
// so callers that care have to measure first.
type Window struct {
	// Limit is the model's context length in tokens.
	Limit int

	// Reserve is held back for generation.
	Reserve int

	counter Counter
}

// NewWindow creates a window with the given token limit.
func NewWindow(limit int) *Window {
	return &Window{Limit: limit, counter: NewEstimatingCounter()}
}

// WindowFor creates a window sized from the model family table. Local
// windows vary widely, from a few thousand tokens for older families up
// to 128k for current llama builds, so sizing per model matters more
// than it does for hosted APIs.
func WindowFor(model string) *Window {
	return NewWindow(GetModelLimit(model))
}

// WithReserve holds back tokens for the response.
func (w *Window) WithReserve(tokens int) *Window {
	w.Reserve = tokens
	return w
}

// WithCounter sets a custom token counter.
func (w *Window) WithCounter(c Counter) *Window {
	w.counter = c
	return w
}

// Budget is the token count available to the prompt.
func (w *Window) Budget() int {
	b := w.Limit - w.Reserve
	if b < 0 {
		return 0
	}
	return b
}

// CountMessages estimates the prompt cost of a transcript: each
// message's text plus the template framing around it.
func (w *Window) CountMessages(texts ...string) int {
	total := 0
	for _, t := range texts {
		total += w.counter.Count(t) + MessageOverhead
	}
	return total
}

// FitsMessages reports whether the transcript fits the prompt budget.
func (w *Window) FitsMessages(texts ...string) bool {
	return w.CountMessages(texts...) <= w.Budget()
}

// Overflow reports how many tokens past the budget the transcript runs,
// or 0 when it fits.
func (w *Window) Overflow(texts ...string) int {
	over := w.CountMessages(texts...) - w.Budget()
	if over < 0 {
		return 0
	}
	return over
}
