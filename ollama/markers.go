package ollama

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tool transcript markers.
//
// The backend's chat roles cannot carry tool history, so past tool calls
// and results are serialized into plain message text. The formats below are
// version 1 of that grammar. Stored transcripts depend on them: any change
// is a breaking change and must bump markerVersion.
const markerVersion = 1

const (
	toolCallPrefix   = "[Tool Call: "
	toolResultPrefix = "[Tool Result for "
)

// formatToolCall renders a historical tool invocation.
// Shape: [Tool Call: name({"arg":"value"})]
func formatToolCall(name string, args json.RawMessage) string {
	return fmt.Sprintf("%s%s(%s)]", toolCallPrefix, name, compactJSON(args))
}

// formatToolResult renders a historical tool result.
// Shape: [Tool Result for name]: {"output":"value"}
func formatToolResult(name string, output json.RawMessage) string {
	return fmt.Sprintf("%s%s]: %s", toolResultPrefix, name, compactJSON(output))
}

// isToolResultMarker reports whether a message body is a serialized tool
// result. Used to pick out tool output when building follow-up prompts.
func isToolResultMarker(content string) bool {
	return strings.HasPrefix(content, toolResultPrefix)
}

// compactJSON renders raw JSON without insignificant whitespace.
// Empty input renders as an empty object; invalid input passes through
// unchanged rather than dropping data.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// toJSONPayload coerces tool output text into a JSON value: valid JSON
// passes through, anything else is quoted as a JSON string.
func toJSONPayload(s string) json.RawMessage {
	trimmed := strings.TrimSpace(s)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return quoted
}
