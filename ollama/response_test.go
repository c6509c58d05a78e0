package ollama

import (
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/ollamakit/provider"
)

func TestNormalizeResponse(t *testing.T) {
	chunk := &chatChunk{
		Model: "llama3.1:8b",
		Message: chatMessage{
			Role:     "assistant",
			Content:  "Paris is the capital of France.",
			Thinking: "simple factual question",
		},
		Done:            true,
		DoneReason:      "stop",
		PromptEvalCount: 12,
		EvalCount:       9,
		TotalDuration:   1500000000,
	}
	warnings := []provider.Warning{{Code: provider.WarnUnsupportedPart, Message: "dropped"}}

	resp := normalizeResponse(chunk, warnings)

	if resp.Content != "Paris is the capital of France." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Thinking != "simple factual question" {
		t.Errorf("Thinking = %q", resp.Thinking)
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.FinishReason != provider.FinishStop {
		t.Errorf("FinishReason = %q, want %q", resp.FinishReason, provider.FinishStop)
	}
	if resp.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", resp.Duration)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("Warnings = %v, want the translation warnings attached", resp.Warnings)
	}

	want := provider.TokenUsage{InputTokens: 12, OutputTokens: 9, TotalTokens: 21}
	if resp.Usage != want {
		t.Errorf("Usage = %+v, want %+v", resp.Usage, want)
	}
}

func TestNormalizeResponse_InlineThinking(t *testing.T) {
	chunk := &chatChunk{
		Model: "deepseek-r1:7b",
		Message: chatMessage{
			Role:    "assistant",
			Content: "<think>France's capital is Paris.</think>\nParis.",
		},
		Done:       true,
		DoneReason: "stop",
	}

	resp := normalizeResponse(chunk, nil)

	if resp.Content != "Paris." {
		t.Errorf("Content = %q, want the tags stripped", resp.Content)
	}
	if resp.Thinking != "France's capital is Paris." {
		t.Errorf("Thinking = %q, want the inline reasoning", resp.Thinking)
	}
}

func TestSplitThinking(t *testing.T) {
	tests := []struct {
		name         string
		msg          chatMessage
		wantContent  string
		wantThinking string
	}{
		{
			name:         "native field wins",
			msg:          chatMessage{Content: "<think>x</think> hi", Thinking: "already split"},
			wantContent:  "<think>x</think> hi",
			wantThinking: "already split",
		},
		{
			name:        "plain content untouched",
			msg:         chatMessage{Content: "just an answer"},
			wantContent: "just an answer",
		},
		{
			name:         "inline tags split",
			msg:          chatMessage{Content: "<think>hmm</think>Paris."},
			wantContent:  "Paris.",
			wantThinking: "hmm",
		},
		{
			name:         "unclosed tag counts as reasoning",
			msg:          chatMessage{Content: "Checking. <think>the stream cut off"},
			wantContent:  "Checking.",
			wantThinking: "the stream cut off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, thinking := splitThinking(tt.msg)
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
			if thinking != tt.wantThinking {
				t.Errorf("thinking = %q, want %q", thinking, tt.wantThinking)
			}
		})
	}
}

func TestConvertToolCalls(t *testing.T) {
	calls := []apiToolCall{
		{Function: apiToolCallFunction{Name: "get_weather", Arguments: map[string]any{"city": "Paris"}}},
		{Function: apiToolCallFunction{Name: "get_time", Arguments: nil}},
	}

	out := convertToolCalls(calls)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}

	if out[0].Name != "get_weather" {
		t.Errorf("Name = %q", out[0].Name)
	}
	if string(out[0].Arguments) != `{"city":"Paris"}` {
		t.Errorf("Arguments = %s", out[0].Arguments)
	}
	if string(out[1].Arguments) != `{}` {
		t.Errorf("nil arguments = %s, want {}", out[1].Arguments)
	}

	// IDs are minted locally: position-prefixed and unique.
	if !strings.HasPrefix(out[0].ID, "call_0_") {
		t.Errorf("ID = %q, want call_0_ prefix", out[0].ID)
	}
	if !strings.HasPrefix(out[1].ID, "call_1_") {
		t.Errorf("ID = %q, want call_1_ prefix", out[1].ID)
	}
	if out[0].ID == out[1].ID {
		t.Error("tool call IDs must be unique")
	}
}

func TestConvertToolCalls_Empty(t *testing.T) {
	if out := convertToolCalls(nil); out != nil {
		t.Errorf("convertToolCalls(nil) = %v, want nil", out)
	}
}

func TestMapFinishReason(t *testing.T) {
	tests := []struct {
		name  string
		chunk chatChunk
		want  provider.FinishReason
	}{
		{
			name:  "stop",
			chunk: chatChunk{DoneReason: "stop"},
			want:  provider.FinishStop,
		},
		{
			name:  "length",
			chunk: chatChunk{DoneReason: "length"},
			want:  provider.FinishLength,
		},
		{
			name:  "unrecognized",
			chunk: chatChunk{DoneReason: "load"},
			want:  provider.FinishUnknown,
		},
		{
			name:  "empty",
			chunk: chatChunk{},
			want:  provider.FinishUnknown,
		},
		{
			name: "tool calls trump the native reason",
			chunk: chatChunk{
				DoneReason: "stop",
				Message: chatMessage{
					ToolCalls: []apiToolCall{{Function: apiToolCallFunction{Name: "f"}}},
				},
			},
			want: provider.FinishToolCalls,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapFinishReason(&tt.chunk); got != tt.want {
				t.Errorf("mapFinishReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUsageFromChunk(t *testing.T) {
	chunk := &chatChunk{PromptEvalCount: 100, EvalCount: 50}

	got := usageFromChunk(chunk)

	want := provider.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}
	if got != want {
		t.Errorf("usageFromChunk() = %+v, want %+v", got, want)
	}
}

func TestNewPartID(t *testing.T) {
	a := newPartID("text")
	b := newPartID("text")

	if !strings.HasPrefix(a, "text_") {
		t.Errorf("ID = %q, want text_ prefix", a)
	}
	if a == b {
		t.Error("part IDs must be unique")
	}
	if got := newPartID("reasoning"); !strings.HasPrefix(got, "reasoning_") {
		t.Errorf("ID = %q, want reasoning_ prefix", got)
	}
}
