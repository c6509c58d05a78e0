package models

// FallbackChain defines the models to try, in order, when one fails.
// Local failures usually mean the model is not installed or does not fit
// in memory, so chains run toward smaller models.
type FallbackChain struct {
	// Models in descending order of capability.
	Models []string

	// MaxAttempts is the maximum total attempts before giving up.
	MaxAttempts int
}

// DefaultFallback retries on the common mid-size and small installs.
var DefaultFallback = FallbackChain{
	Models:      []string{"llama3.1:8b", "llama3.2:3b"},
	MaxAttempts: 3,
}

// NoFallback disables model fallback (retry the same model).
var NoFallback = FallbackChain{
	Models:      nil,
	MaxAttempts: 3,
}

// Next returns the next model to try after a failure and whether to
// continue. Once the chain's smallest model fails, retries stay there
// until MaxAttempts runs out.
func (c *FallbackChain) Next(current string, attempt int) (string, bool) {
	if attempt >= c.MaxAttempts {
		return "", false
	}

	// An empty chain means retry the same model.
	if len(c.Models) == 0 {
		return current, true
	}

	idx := -1
	for i, m := range c.Models {
		if m == current {
			idx = i
			break
		}
	}

	// The failed model is outside the chain: start at the top.
	if idx < 0 {
		return c.Models[0], true
	}
	if idx >= len(c.Models)-1 {
		return current, true
	}
	return c.Models[idx+1], true
}

// CanFallBack reports whether the current model has a smaller peer left.
func (c *FallbackChain) CanFallBack(current string) bool {
	for i, m := range c.Models {
		if m == current {
			return i < len(c.Models)-1
		}
	}
	return false
}

// SmallestModel returns the last-resort model in the chain.
func (c *FallbackChain) SmallestModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[len(c.Models)-1]
}

// FallbackState tracks one request's walk down a fallback chain.
type FallbackState struct {
	Chain        *FallbackChain
	CurrentModel string
	Attempt      int
	LastError    error
}

// NewFallbackState creates a fallback state starting at the given model.
func NewFallbackState(chain *FallbackChain, startModel string) *FallbackState {
	if chain == nil {
		chain = &DefaultFallback
	}
	return &FallbackState{
		Chain:        chain,
		CurrentModel: startModel,
	}
}

// RecordFailure records a failed attempt and moves down the chain when
// possible. Returns true while attempts remain.
func (s *FallbackState) RecordFailure(err error) bool {
	s.Attempt++
	s.LastError = err

	next, ok := s.Chain.Next(s.CurrentModel, s.Attempt)
	if !ok {
		return false
	}
	s.CurrentModel = next
	return true
}

// Exhausted returns true if all attempts have been used.
func (s *FallbackState) Exhausted() bool {
	return s.Attempt >= s.Chain.MaxAttempts
}
