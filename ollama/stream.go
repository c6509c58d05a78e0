package ollama

import (
	"github.com/randalmurphal/ollamakit/provider"
)

// streamTransformer turns raw backend chunks into lifecycle events.
//
// The backend interleaves reasoning and answer text freely across chunks;
// the transformer brackets each kind into a start/delta/end run with a
// stable ID so consumers can reassemble them. It is not safe for concurrent
// use: one goroutine feeds it chunks and forwards the events.
type streamTransformer struct {
	textID      string
	reasoningID string
	started     bool
	finished    bool
}

func newStreamTransformer() *streamTransformer {
	return &streamTransformer{}
}

// start emits the stream start event, once.
func (t *streamTransformer) start() []provider.Event {
	if t.started {
		return nil
	}
	t.started = true
	return []provider.Event{{Type: provider.EventStreamStart}}
}

// next transforms one chunk's content into events. Terminal handling
// (closing runs, the finish event) is the caller's job via finish or abort,
// so a synthesized answer can be injected before the stream ends.
func (t *streamTransformer) next(chunk chatChunk) []provider.Event {
	events := t.start()

	if chunk.Message.Thinking != "" {
		if t.reasoningID == "" {
			t.reasoningID = newPartID("reasoning")
			events = append(events, provider.Event{Type: provider.EventReasoningStart, ID: t.reasoningID})
		}
		events = append(events, provider.Event{
			Type:  provider.EventReasoningDelta,
			ID:    t.reasoningID,
			Delta: chunk.Message.Thinking,
		})
	}

	if chunk.Message.Content != "" {
		// Reasoning is over once answer text arrives.
		if t.reasoningID != "" {
			events = append(events, provider.Event{Type: provider.EventReasoningEnd, ID: t.reasoningID})
			t.reasoningID = ""
		}
		if t.textID == "" {
			t.textID = newPartID("text")
			events = append(events, provider.Event{Type: provider.EventTextStart, ID: t.textID})
		}
		events = append(events, provider.Event{
			Type:  provider.EventTextDelta,
			ID:    t.textID,
			Delta: chunk.Message.Content,
		})
	}

	for i, call := range chunk.Message.ToolCalls {
		events = append(events, provider.Event{
			Type:      provider.EventToolCall,
			ID:        newCallID(i),
			Name:      call.Function.Name,
			Arguments: encodeToolArgs(call.Function.Arguments),
		})
	}

	return events
}

// closeRuns ends any open text or reasoning run.
func (t *streamTransformer) closeRuns() []provider.Event {
	var events []provider.Event
	if t.reasoningID != "" {
		events = append(events, provider.Event{Type: provider.EventReasoningEnd, ID: t.reasoningID})
		t.reasoningID = ""
	}
	if t.textID != "" {
		events = append(events, provider.Event{Type: provider.EventTextEnd, ID: t.textID})
		t.textID = ""
	}
	return events
}

// finish closes open runs and emits the terminal finish event, once.
func (t *streamTransformer) finish(reason provider.FinishReason, usage provider.TokenUsage) []provider.Event {
	if t.finished {
		return nil
	}
	t.finished = true

	events := append(t.start(), t.closeRuns()...)
	return append(events, provider.Event{
		Type:   provider.EventFinish,
		Reason: reason,
		Usage:  &usage,
	})
}

// abort closes open runs and emits the terminal error event, once.
func (t *streamTransformer) abort(err error) []provider.Event {
	if t.finished {
		return nil
	}
	t.finished = true

	events := append(t.start(), t.closeRuns()...)
	return append(events, provider.Event{Type: provider.EventError, Err: err})
}
