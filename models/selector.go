package models

import "context"

// selectorKey is the context key for the model selector.
type selectorKey struct{}

// Selector picks a configured model for each capability tier.
type Selector struct {
	heavyModel   string
	defaultModel string
	fastModel    string
	override     string
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// NewSelector creates a model selector with the given options.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		heavyModel:   "llama3.3:70b",
		defaultModel: "llama3.1:8b",
		fastModel:    "llama3.2:3b",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithHeavyModel sets the model for tasks that need the largest install.
func WithHeavyModel(model string) SelectorOption {
	return func(s *Selector) {
		s.heavyModel = model
	}
}

// WithDefaultModel sets the model for most tasks.
func WithDefaultModel(model string) SelectorOption {
	return func(s *Selector) {
		s.defaultModel = model
	}
}

// WithFastModel sets the model for simple, high-volume tasks.
func WithFastModel(model string) SelectorOption {
	return func(s *Selector) {
		s.fastModel = model
	}
}

// WithOverride sets a model that wins over every tier selection.
func WithOverride(model string) SelectorOption {
	return func(s *Selector) {
		s.override = model
	}
}

// ForTier returns the configured model for a tier.
func (s *Selector) ForTier(tier Tier) string {
	if s.override != "" {
		return s.override
	}

	switch tier {
	case TierHeavy:
		return s.heavyModel
	case TierFast:
		return s.fastModel
	default:
		return s.defaultModel
	}
}

// Clone returns a copy of the selector with the same configuration.
func (s *Selector) Clone() *Selector {
	clone := *s
	return &clone
}

// WithGlobal returns a new selector with an override applied.
func (s *Selector) WithGlobal(model string) *Selector {
	clone := s.Clone()
	clone.override = model
	return clone
}

// NewContext returns a new context with the selector attached.
func NewContext(ctx context.Context, selector *Selector) context.Context {
	return context.WithValue(ctx, selectorKey{}, selector)
}

// FromContext retrieves the selector from the context.
// Returns a default selector if none is present.
func FromContext(ctx context.Context) *Selector {
	if s, ok := ctx.Value(selectorKey{}).(*Selector); ok {
		return s
	}
	return NewSelector()
}
