package ollama

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/ollamakit/extract"
	"github.com/randalmurphal/ollamakit/provider"
)

// normalizeResponse converts a complete backend response into the
// normalized shape, attaching any warnings gathered during translation.
func normalizeResponse(chunk *chatChunk, warnings []provider.Warning) *provider.Response {
	usage := usageFromChunk(chunk)
	content, thinking := splitThinking(chunk.Message)

	return &provider.Response{
		Content:      content,
		Thinking:     thinking,
		ToolCalls:    convertToolCalls(chunk.Message.ToolCalls),
		Usage:        usage,
		Model:        chunk.Model,
		FinishReason: mapFinishReason(chunk),
		Duration:     time.Duration(chunk.TotalDuration),
		Warnings:     warnings,
	}
}

// splitThinking separates reasoning from the answer. Servers running a
// reasoning model without a template that splits its scratch work leave
// it inline in the content as <think> tags; pull it out so Thinking is
// populated the same way either way.
func splitThinking(msg chatMessage) (content, thinking string) {
	if msg.Thinking != "" || !extract.HasThinking(msg.Content) {
		return msg.Content, msg.Thinking
	}
	thinking, content = extract.ExtractThinking(msg.Content)
	return content, thinking
}

// convertToolCalls re-encodes wire tool calls, minting correlation IDs the
// backend does not provide.
func convertToolCalls(calls []apiToolCall) []provider.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	out := make([]provider.ToolCall, 0, len(calls))
	for i, call := range calls {
		out = append(out, provider.ToolCall{
			ID:        newCallID(i),
			Name:      call.Function.Name,
			Arguments: encodeToolArgs(call.Function.Arguments),
		})
	}
	return out
}

// encodeToolArgs re-encodes wire tool arguments as raw JSON, defaulting to
// an empty object when the backend sent none.
func encodeToolArgs(args map[string]any) json.RawMessage {
	if args == nil {
		return json.RawMessage(`{}`)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

// mapFinishReason normalizes the backend's done_reason. A response carrying
// tool calls finishes as tool_calls regardless of the native reason;
// unrecognized native values map to unknown rather than failing.
func mapFinishReason(chunk *chatChunk) provider.FinishReason {
	if len(chunk.Message.ToolCalls) > 0 {
		return provider.FinishToolCalls
	}
	switch chunk.DoneReason {
	case "stop":
		return provider.FinishStop
	case "length":
		return provider.FinishLength
	default:
		return provider.FinishUnknown
	}
}

func usageFromChunk(chunk *chatChunk) provider.TokenUsage {
	u := provider.TokenUsage{
		InputTokens:  chunk.PromptEvalCount,
		OutputTokens: chunk.EvalCount,
	}
	u.TotalTokens = u.InputTokens + u.OutputTokens
	return u
}

// newCallID mints a correlation ID for the i-th tool call of a response.
func newCallID(i int) string {
	return fmt.Sprintf("call_%d_%s", i, shortID())
}

// newPartID mints an ID for a streamed content run.
func newPartID(kind string) string {
	return kind + "_" + shortID()
}

func shortID() string {
	return uuid.NewString()[:8]
}
