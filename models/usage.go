package models

import (
	"sync"
	"time"
)

// Usage accumulates token counts and generation time for one model.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Requests     int
	EvalTime     time.Duration
}

// Add adds the given usage to this usage.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.Requests += other.Requests
	u.EvalTime += other.EvalTime
}

// TotalTokens returns the total tokens used.
func (u *Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Rate returns generated tokens per second, or 0 before any timed request.
func (u *Usage) Rate() float64 {
	if u.EvalTime <= 0 {
		return 0
	}
	return float64(u.OutputTokens) / u.EvalTime.Seconds()
}

// Tracker aggregates token usage and throughput per model. Local models
// cost nothing to run, so the interesting totals are context pressure and
// generation speed.
type Tracker struct {
	mu     sync.RWMutex
	totals map[string]Usage
}

// NewTracker creates a usage tracker.
func NewTracker() *Tracker {
	return &Tracker{
		totals: make(map[string]Usage),
	}
}

// Record adds one request's usage for the given model. evalTime is the
// generation time reported by the server; pass 0 when unknown.
func (t *Tracker) Record(model string, input, output int, evalTime time.Duration) {
	t.RecordUsage(model, Usage{
		InputTokens:  input,
		OutputTokens: output,
		Requests:     1,
		EvalTime:     evalTime,
	})
}

// RecordUsage adds a usage record for the given model.
func (t *Tracker) RecordUsage(model string, usage Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.totals[model]
	u.Add(usage)
	t.totals[model] = u
}

// Usage returns the usage for a specific model.
func (t *Tracker) Usage(model string) Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[model]
}

// Summary returns a copy of all usage totals.
func (t *Tracker) Summary() map[string]Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]Usage, len(t.totals))
	for k, v := range t.totals {
		result[k] = v
	}
	return result
}

// TotalUsage returns aggregated usage across all models.
func (t *Tracker) TotalUsage() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total Usage
	for _, u := range t.totals {
		total.Add(u)
	}
	return total
}

// Reset clears all tracked usage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = make(map[string]Usage)
}
