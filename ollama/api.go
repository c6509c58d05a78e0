package ollama

import "encoding/json"

// Wire types for the Ollama HTTP API.
//
// Chat completions use POST /api/chat. Non-streaming calls return a single
// JSON body; streaming calls return newline-delimited JSON chunks where the
// final chunk has done=true and carries the usage counters. Embeddings use
// POST /api/embed.

// chatRequest is the /api/chat request body.
type chatRequest struct {
	Model     string          `json:"model"`
	Messages  []chatMessage   `json:"messages"`
	Tools     []apiTool       `json:"tools,omitempty"`
	Format    json.RawMessage `json:"format,omitempty"`
	Options   map[string]any  `json:"options,omitempty"`
	Stream    *bool           `json:"stream,omitempty"`
	KeepAlive string          `json:"keep_alive,omitempty"`
}

// chatMessage is one conversation turn on the wire.
type chatMessage struct {
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Thinking  string        `json:"thinking,omitempty"`
	Images    []string      `json:"images,omitempty"`
	ToolCalls []apiToolCall `json:"tool_calls,omitempty"`
}

// apiTool advertises one callable tool.
type apiTool struct {
	Type     string          `json:"type"`
	Function apiToolFunction `json:"function"`
}

type apiToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// apiToolCall is a model-requested tool invocation. The backend assigns no
// call IDs; the adapter mints them during normalization.
type apiToolCall struct {
	Function apiToolCallFunction `json:"function"`
}

type apiToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// chatChunk is a /api/chat response body: the whole response when not
// streaming, or one NDJSON line when streaming. Error is set on in-stream
// failure lines.
type chatChunk struct {
	Model              string      `json:"model"`
	CreatedAt          string      `json:"created_at"`
	Message            chatMessage `json:"message"`
	Done               bool        `json:"done"`
	DoneReason         string      `json:"done_reason,omitempty"`
	PromptEvalCount    int         `json:"prompt_eval_count,omitempty"`
	EvalCount          int         `json:"eval_count,omitempty"`
	TotalDuration      int64       `json:"total_duration,omitempty"`
	LoadDuration       int64       `json:"load_duration,omitempty"`
	PromptEvalDuration int64       `json:"prompt_eval_duration,omitempty"`
	EvalDuration       int64       `json:"eval_duration,omitempty"`
	Error              string      `json:"error,omitempty"`
}

// embedRequest is the /api/embed request body. Input is a string or a
// list of strings.
type embedRequest struct {
	Model     string         `json:"model"`
	Input     any            `json:"input"`
	Options   map[string]any `json:"options,omitempty"`
	KeepAlive string         `json:"keep_alive,omitempty"`
}

// embedResponse is the /api/embed response body.
type embedResponse struct {
	Model           string      `json:"model"`
	Embeddings      [][]float64 `json:"embeddings"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
}

// errorResponse is the body of a non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
