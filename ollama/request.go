package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/ollamakit/provider"
	"github.com/randalmurphal/ollamakit/tokens"
)

// emptyObjectSchema is the accept-all parameter schema sent when a tool's
// declared schema cannot be passed through.
const emptyObjectSchema = `{"type":"object","properties":{}}`

// translateRequest converts a normalized request into the backend wire
// format. Lossy conversions are reported as warnings; only configuration
// errors (an unsupported response format, a malformed request) fail the
// translation.
func translateRequest(cfg Config, caps provider.Capabilities, req provider.Request) (*chatRequest, []provider.Warning, error) {
	out := &chatRequest{
		Model:     req.Model,
		KeepAlive: cfg.KeepAlive,
	}
	if out.Model == "" {
		out.Model = cfg.Model
	}

	var warnings []provider.Warning

	system := req.SystemPrompt
	if system == "" {
		system = cfg.SystemPrompt
	}
	if system != "" {
		out.Messages = append(out.Messages, chatMessage{Role: "system", Content: system})
	}

	for i, m := range req.Messages {
		msgs, w := translateMessage(i, m)
		out.Messages = append(out.Messages, msgs...)
		warnings = append(warnings, w...)
	}

	for _, tool := range req.Tools {
		converted, w := convertTool(tool)
		if w != nil {
			warnings = append(warnings, *w)
		}
		out.Tools = append(out.Tools, converted)
	}

	if req.Format != nil {
		format, err := convertFormat(req.Format, caps)
		if err != nil {
			return nil, warnings, err
		}
		out.Format = format
	}

	out.Options = buildOptions(req)

	if over := contextOverflow(out); over > 0 {
		warnings = append(warnings, provider.Warning{
			Code: provider.WarnContextLength,
			Message: fmt.Sprintf("prompt runs an estimated %d tokens past the %s context window; the server will drop the oldest turns",
				over, out.Model),
		})
	}

	return out, warnings, nil
}

// contextOverflow estimates how far the prompt runs past the model's
// context window. The server does not reject oversized prompts, it
// silently truncates them, so the overflow surfaces as a warning.
func contextOverflow(wire *chatRequest) int {
	texts := make([]string, 0, len(wire.Messages))
	for _, m := range wire.Messages {
		texts = append(texts, m.Content)
	}
	return tokens.WindowFor(wire.Model).Overflow(texts...)
}

// translateMessage converts one normalized message into one or more wire
// messages. Tool results become their own user-role messages; everything
// else folds into a single message for the original role.
func translateMessage(index int, m provider.Message) ([]chatMessage, []provider.Warning) {
	if !m.IsStructured() {
		return translatePlainMessage(m), nil
	}

	var warnings []provider.Warning
	var text strings.Builder
	var thinking strings.Builder
	var images []string
	var callMarkers []string
	var results []chatMessage

	for _, part := range m.Parts {
		switch part.Type {
		case provider.PartText:
			text.WriteString(part.Text)

		case provider.PartReasoning:
			thinking.WriteString(part.Text)

		case provider.PartImage:
			img, w := convertImage(index, part)
			if w != nil {
				warnings = append(warnings, *w)
				continue
			}
			images = append(images, img)

		case provider.PartToolCall:
			callMarkers = append(callMarkers, formatToolCall(part.ToolName, part.Arguments))

		case provider.PartToolResult:
			results = append(results, chatMessage{
				Role:    "user",
				Content: formatToolResult(part.ToolName, part.Output),
			})

		default:
			warnings = append(warnings, provider.Warning{
				Code:    provider.WarnUnsupportedPart,
				Field:   fmt.Sprintf("messages[%d]", index),
				Message: fmt.Sprintf("content part type %q is not supported and was dropped", part.Type),
			})
		}
	}

	content := text.String()
	for _, marker := range callMarkers {
		if content != "" {
			content += "\n"
		}
		content += marker
	}

	var out []chatMessage
	if content != "" || thinking.Len() > 0 || len(images) > 0 {
		out = append(out, chatMessage{
			Role:     translateRole(m.Role),
			Content:  content,
			Thinking: thinking.String(),
			Images:   images,
		})
	}
	out = append(out, results...)
	return out, warnings
}

// translatePlainMessage converts a message that carries only a content
// string. Tool-role messages become marker-formatted user messages.
func translatePlainMessage(m provider.Message) []chatMessage {
	if m.Role == provider.RoleTool {
		name := m.Name
		if name == "" {
			name = "tool"
		}
		return []chatMessage{{
			Role:    "user",
			Content: formatToolResult(name, toJSONPayload(m.Content)),
		}}
	}
	return []chatMessage{{Role: translateRole(m.Role), Content: m.Content}}
}

func translateRole(r provider.Role) string {
	switch r {
	case provider.RoleSystem:
		return "system"
	case provider.RoleAssistant:
		return "assistant"
	case provider.RoleTool:
		// Tool transcripts travel as user messages; see translateMessage.
		return "user"
	default:
		return "user"
	}
}

// convertImage extracts the base64 payload the backend expects.
// Remote URLs cannot be fetched on the model's behalf and are dropped with
// a warning.
func convertImage(index int, part provider.ContentPart) (string, *provider.Warning) {
	if part.ImageBase64 != "" {
		return part.ImageBase64, nil
	}

	if strings.HasPrefix(part.ImageURL, "data:") {
		if _, payload, ok := strings.Cut(part.ImageURL, ";base64,"); ok && payload != "" {
			return payload, nil
		}
		return "", &provider.Warning{
			Code:    provider.WarnUnsupportedPart,
			Field:   fmt.Sprintf("messages[%d]", index),
			Message: "data: image URL is not base64-encoded and was dropped",
		}
	}

	return "", &provider.Warning{
		Code:    provider.WarnUnsupportedPart,
		Field:   fmt.Sprintf("messages[%d]", index),
		Message: "remote image URLs cannot be passed to the backend; the part was dropped",
	}
}

// convertTool passes a plain JSON Schema through and degrades anything else
// to an accept-all object schema. Tools never fail translation: a model
// that sees a permissive schema is better than a request that throws.
func convertTool(tool provider.Tool) (apiTool, *provider.Warning) {
	params := tool.Parameters
	var warning *provider.Warning

	if len(params) == 0 {
		params = json.RawMessage(emptyObjectSchema)
	} else if !isPlainObjectSchema(params) {
		warning = &provider.Warning{
			Code:    provider.WarnUnsupportedSchema,
			Field:   "tools." + tool.Name,
			Message: "parameter schema is not a plain JSON Schema object; an empty object schema was sent instead",
		}
		params = json.RawMessage(emptyObjectSchema)
	}

	return apiTool{
		Type: "function",
		Function: apiToolFunction{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		},
	}, warning
}

// isPlainObjectSchema reports whether raw is a declarative JSON object, as
// opposed to a serialized validator or a non-object value.
func isPlainObjectSchema(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	_, ok := v.(map[string]any)
	return ok
}

// convertFormat maps a response format onto the wire format field.
// A schema-constrained format requires backend support and fails fast
// when the capability is missing.
func convertFormat(f *provider.ResponseFormat, caps provider.Capabilities) (json.RawMessage, error) {
	switch f.Type {
	case provider.FormatText, "":
		return nil, nil
	case provider.FormatJSON:
		return json.RawMessage(`"json"`), nil
	case provider.FormatJSONSchema:
		if !caps.StructuredOutput {
			return nil, fmt.Errorf("%w: json_schema response format", provider.ErrCapabilityNotSupported)
		}
		if len(f.Schema) == 0 {
			return nil, fmt.Errorf("%w: json_schema response format requires a schema", provider.ErrInvalidRequest)
		}
		return f.Schema, nil
	default:
		return nil, fmt.Errorf("%w: unknown response format %q", provider.ErrInvalidRequest, f.Type)
	}
}

// buildOptions maps the portable generation parameters onto their native
// names, then overlays the caller's native options. Native options always
// win a collision.
func buildOptions(req provider.Request) map[string]any {
	opts := make(map[string]any)

	if req.Temperature != nil {
		opts["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		opts["top_p"] = *req.TopP
	}
	if req.TopK != nil {
		opts["top_k"] = *req.TopK
	}
	if req.MaxTokens != nil {
		opts["num_predict"] = *req.MaxTokens
	}
	if req.FrequencyPenalty != nil {
		opts["frequency_penalty"] = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		opts["presence_penalty"] = *req.PresencePenalty
	}
	if req.Seed != nil {
		opts["seed"] = *req.Seed
	}
	if len(req.Stop) > 0 {
		opts["stop"] = req.Stop
	}

	for k, v := range req.Options {
		opts[k] = v
	}

	if len(opts) == 0 {
		return nil
	}
	return opts
}
