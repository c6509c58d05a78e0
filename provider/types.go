package provider

import (
	"encoding/json"
	"time"
)

// Request configures an LLM completion call.
// This is the backend-agnostic request format used across all providers.
type Request struct {
	// SystemPrompt sets the system message that guides the model's behavior.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages is the conversation history to send to the model.
	Messages []Message `json:"messages"`

	// Model specifies which model to use (backend-specific name).
	// Examples: "llama3.1:8b", "qwen2.5:14b", "deepseek-r1:7b"
	Model string `json:"model,omitempty"`

	// Tools lists available tools the model can invoke.
	Tools []Tool `json:"tools,omitempty"`

	// Format constrains the response format. Nil means plain text.
	Format *ResponseFormat `json:"format,omitempty"`

	// Portable generation parameters. Nil means "not set": the backend
	// default applies and nothing is sent on the wire. Each backend maps
	// these to its native parameter names.
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Seed             *int     `json:"seed,omitempty"`
	Stop             []string `json:"stop,omitempty"`

	// Options holds native parameters passed through to the backend
	// unchanged. When an option collides with a portable parameter above,
	// the option wins.
	Options map[string]any `json:"options,omitempty"`

	// Metadata holds caller data carried through to the response untouched.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Message is a conversation turn.
// For simple text messages, use Content. For multimodal or tool-bearing
// messages, use Parts instead.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"` // For tool results

	// Parts enables structured content (text, reasoning, images, tool
	// calls, tool results). If set, takes precedence over Content.
	Parts []ContentPart `json:"parts,omitempty"`
}

// PartType identifies the kind of a ContentPart.
type PartType string

// Content part types.
const (
	PartText       PartType = "text"
	PartReasoning  PartType = "reasoning"
	PartImage      PartType = "image"
	PartToolCall   PartType = "tool_call"
	PartToolResult PartType = "tool_result"
)

// ContentPart represents a piece of structured message content.
// Which fields are meaningful depends on Type.
type ContentPart struct {
	// Type indicates the content type.
	Type PartType `json:"type"`

	// Text content (when Type is PartText or PartReasoning).
	Text string `json:"text,omitempty"`

	// ImageURL for remote images (when Type == PartImage).
	ImageURL string `json:"image_url,omitempty"`

	// ImageBase64 for inline images (when Type == PartImage).
	// Format: base64-encoded image data without a data: prefix.
	ImageBase64 string `json:"image_base64,omitempty"`

	// MediaType specifies the MIME type (e.g., "image/png", "image/jpeg").
	MediaType string `json:"media_type,omitempty"`

	// ToolID correlates a tool call with its result
	// (when Type is PartToolCall or PartToolResult).
	ToolID string `json:"tool_id,omitempty"`

	// ToolName is the invoked tool's name
	// (when Type is PartToolCall or PartToolResult).
	ToolName string `json:"tool_name,omitempty"`

	// Arguments is the JSON-encoded tool input (when Type == PartToolCall).
	Arguments json.RawMessage `json:"arguments,omitempty"`

	// Output is the JSON-encoded tool output (when Type == PartToolResult).
	Output json.RawMessage `json:"output,omitempty"`

	// IsError marks a failed tool execution (when Type == PartToolResult).
	IsError bool `json:"is_error,omitempty"`
}

// NewTextMessage creates a simple text message.
func NewTextMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewImageMessage creates a message with an image from a URL.
func NewImageMessage(role Role, text, imageURL string) Message {
	return Message{
		Role: role,
		Parts: []ContentPart{
			{Type: PartText, Text: text},
			{Type: PartImage, ImageURL: imageURL},
		},
	}
}

// NewImageBase64Message creates a message with an inline base64 image.
func NewImageBase64Message(role Role, text, base64Data, mediaType string) Message {
	return Message{
		Role: role,
		Parts: []ContentPart{
			{Type: PartText, Text: text},
			{Type: PartImage, ImageBase64: base64Data, MediaType: mediaType},
		},
	}
}

// NewToolResultMessage creates a tool-role message carrying one tool result.
func NewToolResultMessage(toolID, toolName string, output json.RawMessage) Message {
	return Message{
		Role: RoleTool,
		Name: toolName,
		Parts: []ContentPart{
			{Type: PartToolResult, ToolID: toolID, ToolName: toolName, Output: output},
		},
	}
}

// IsStructured returns true if the message uses structured parts.
func (m Message) IsStructured() bool {
	return len(m.Parts) > 0
}

// GetText returns the text content of the message.
// For structured messages, concatenates all text parts.
func (m Message) GetText() string {
	if !m.IsStructured() {
		return m.Content
	}
	var text string
	for _, part := range m.Parts {
		if part.Type == PartText {
			text += part.Text
		}
	}
	return text
}

// ToolCalls returns the tool call parts of the message.
func (m Message) ToolCalls() []ContentPart {
	return m.partsOfType(PartToolCall)
}

// ToolResults returns the tool result parts of the message.
func (m Message) ToolResults() []ContentPart {
	return m.partsOfType(PartToolResult)
}

func (m Message) partsOfType(t PartType) []ContentPart {
	var parts []ContentPart
	for _, part := range m.Parts {
		if part.Type == t {
			parts = append(parts, part)
		}
	}
	return parts
}

// Role identifies the message sender.
type Role string

// Standard message roles supported across all backends.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Tool defines an available tool for the LLM.
// Parameters must be a plain JSON Schema object describing the tool's input.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// FormatType identifies a response format constraint.
type FormatType string

// Response format types.
const (
	FormatText       FormatType = "text"
	FormatJSON       FormatType = "json"
	FormatJSONSchema FormatType = "json_schema"
)

// ResponseFormat constrains model output.
// Schema is required when Type == FormatJSONSchema and ignored otherwise.
type ResponseFormat struct {
	Type   FormatType      `json:"type"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

// Normalized finish reasons. Backends map their native values onto these;
// unrecognized native values become FinishUnknown rather than an error.
const (
	FinishStop      FinishReason = "stop"
	FinishLength    FinishReason = "length"
	FinishToolCalls FinishReason = "tool_calls"
	FinishCanceled  FinishReason = "canceled"
	FinishError     FinishReason = "error"
	FinishUnknown   FinishReason = "unknown"
)

// Response is the output of a completion call.
type Response struct {
	// Content is the text response from the model.
	Content string `json:"content"`

	// Thinking is the model's reasoning content, when the backend
	// separates it from the final answer.
	Thinking string `json:"thinking,omitempty"`

	// ToolCalls contains any tool invocations requested by the model.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Usage tracks token consumption for this request, including any
	// follow-up calls the backend made on the caller's behalf.
	Usage TokenUsage `json:"usage"`

	// Model is the actual model used (may differ from requested).
	Model string `json:"model"`

	// FinishReason indicates why the model stopped generating.
	FinishReason FinishReason `json:"finish_reason"`

	// Duration is the time taken for the completion.
	Duration time.Duration `json:"duration"`

	// Warnings lists compatibility notes accumulated while translating the
	// request or response. Warnings never fail a call.
	Warnings []Warning `json:"warnings,omitempty"`

	// Metadata holds backend-specific response data.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ToolCall represents a tool invocation request from the LLM.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// Warning codes reported on responses.
const (
	WarnUnsupportedPart    = "unsupported_part"
	WarnUnsupportedSchema  = "unsupported_schema"
	WarnUnsupportedFormat  = "unsupported_format"
	WarnContextLength      = "context_length"
	WarnSynthesisFailed    = "synthesis_failed"
	WarnSynthesisExhausted = "synthesis_exhausted"
)

// Warning describes a request feature the backend could not honor exactly.
// The call still succeeds; the warning records what was degraded.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Ptr returns a pointer to v. Convenient for the optional parameter
// fields on Request.
func Ptr[T any](v T) *T {
	return &v
}
