package provider

import (
	"encoding/json"
	"strings"
	"sync"
)

// EventType identifies a streaming lifecycle event.
type EventType string

// Streaming lifecycle events. A well-formed stream starts with
// EventStreamStart, carries zero or more content events, and ends with
// exactly one terminal event (EventFinish or EventError) before the
// channel closes.
const (
	// EventStreamStart is always the first event on a stream.
	EventStreamStart EventType = "stream_start"

	// EventTextStart opens a text run. Deltas with the same ID follow.
	EventTextStart EventType = "text_start"
	// EventTextDelta carries an incremental piece of a text run.
	EventTextDelta EventType = "text_delta"
	// EventTextEnd closes a text run.
	EventTextEnd EventType = "text_end"

	// EventReasoningStart opens a reasoning run.
	EventReasoningStart EventType = "reasoning_start"
	// EventReasoningDelta carries an incremental piece of reasoning.
	EventReasoningDelta EventType = "reasoning_delta"
	// EventReasoningEnd closes a reasoning run.
	EventReasoningEnd EventType = "reasoning_end"

	// EventToolCall reports a complete tool invocation request.
	EventToolCall EventType = "tool_call"
	// EventToolResult reports a tool execution result echoed into the stream.
	EventToolResult EventType = "tool_result"

	// EventWarning reports a non-fatal compatibility note.
	EventWarning EventType = "warning"

	// EventFinish terminates a successful stream. Carries the finish
	// reason and final usage.
	EventFinish EventType = "finish"
	// EventError terminates a failed stream. Carries the error.
	EventError EventType = "error"
)

// Event is one streaming lifecycle event.
// Which fields are meaningful depends on Type.
type Event struct {
	Type EventType `json:"type"`

	// ID correlates start/delta/end events of one content run, and tool
	// calls with their results.
	ID string `json:"id,omitempty"`

	// Delta is the incremental text for delta events.
	Delta string `json:"delta,omitempty"`

	// Name is the tool name for tool events.
	Name string `json:"name,omitempty"`

	// Arguments is the JSON-encoded tool input (EventToolCall).
	Arguments json.RawMessage `json:"arguments,omitempty"`

	// Output is the JSON-encoded tool output (EventToolResult).
	Output json.RawMessage `json:"output,omitempty"`

	// Reason is set on EventFinish.
	Reason FinishReason `json:"reason,omitempty"`

	// Usage is set on EventFinish.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Warning is set on EventWarning.
	Warning *Warning `json:"warning,omitempty"`

	// Err is set on EventError.
	Err error `json:"-"`
}

// Terminal reports whether the event ends its stream.
func (e Event) Terminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}

// Accumulator collects streaming events back into a Response.
// It accumulates events as they arrive.
//
// Thread-safe for concurrent append and read operations.
type Accumulator struct {
	content   strings.Builder
	thinking  strings.Builder
	toolCalls []ToolCall
	warnings  []Warning
	usage     *TokenUsage
	reason    FinishReason
	done      bool
	err       error
	mu        sync.RWMutex
}

// NewAccumulator creates an accumulator for collecting stream events.
//
// Example:
//
//	acc := provider.NewAccumulator()
//
//	for event := range events {
//	    acc.Append(event)
//	}
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append adds an event to the accumulator.
// It captures text and reasoning deltas, tool calls, warnings, usage,
// and the finish reason.
func (a *Accumulator) Append(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch event.Type {
	case EventTextDelta:
		a.content.WriteString(event.Delta)

	case EventReasoningDelta:
		a.thinking.WriteString(event.Delta)

	case EventToolCall:
		a.toolCalls = append(a.toolCalls, ToolCall{
			ID:        event.ID,
			Name:      event.Name,
			Arguments: event.Arguments,
		})

	case EventWarning:
		if event.Warning != nil {
			a.warnings = append(a.warnings, *event.Warning)
		}

	case EventFinish:
		a.done = true
		a.reason = event.Reason
		if event.Usage != nil {
			u := *event.Usage
			a.usage = &u
		}

	case EventError:
		a.done = true
		a.err = event.Err
	}
}

// Content returns the accumulated text so far.
func (a *Accumulator) Content() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.content.String()
}

// Thinking returns the accumulated reasoning content so far.
func (a *Accumulator) Thinking() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.thinking.String()
}

// ToolCalls returns the tool calls received so far.
func (a *Accumulator) ToolCalls() []ToolCall {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.toolCalls
}

// Usage returns the token usage, or nil if not yet received.
func (a *Accumulator) Usage() *TokenUsage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.usage
}

// Done returns true if a terminal event has been received.
func (a *Accumulator) Done() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Err returns any error from the stream.
func (a *Accumulator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Len returns the current length of accumulated text.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.content.Len()
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.content.Reset()
	a.thinking.Reset()
	a.toolCalls = nil
	a.warnings = nil
	a.usage = nil
	a.reason = ""
	a.done = false
	a.err = nil
}

// Response converts the accumulated stream into a Response.
// This is useful after the stream is complete.
func (a *Accumulator) Response() *Response {
	a.mu.RLock()
	defer a.mu.RUnlock()

	resp := &Response{
		Content:      a.content.String(),
		Thinking:     a.thinking.String(),
		ToolCalls:    a.toolCalls,
		Warnings:     a.warnings,
		FinishReason: a.reason,
	}

	if resp.FinishReason == "" {
		resp.FinishReason = FinishStop
	}
	if a.usage != nil {
		resp.Usage = *a.usage
	}
	if a.err != nil {
		resp.FinishReason = FinishError
	}

	return resp
}

// ConsumeStream reads all events from a stream channel into the accumulator.
// It blocks until the channel is closed.
// Returns the stream's error, if any.
//
// Example:
//
//	events, _ := client.Stream(ctx, req)
//	acc := provider.NewAccumulator()
//	if err := acc.ConsumeStream(events); err != nil {
//	    // Handle error
//	}
//	response := acc.Response()
func (a *Accumulator) ConsumeStream(events <-chan Event) error {
	for event := range events {
		a.Append(event)
		if event.Err != nil {
			return event.Err
		}
	}
	return nil
}

// Collect drains a stream channel and returns the assembled Response.
// It is shorthand for NewAccumulator().ConsumeStream followed by Response.
func Collect(events <-chan Event) (*Response, error) {
	acc := NewAccumulator()
	if err := acc.ConsumeStream(events); err != nil {
		return nil, err
	}
	return acc.Response(), nil
}
