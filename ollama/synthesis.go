package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/ollamakit/extract"
	"github.com/randalmurphal/ollamakit/provider"
	"github.com/randalmurphal/ollamakit/template"
	"github.com/randalmurphal/ollamakit/truncate"
)

// DefaultSynthesisPrompt elicits a direct answer after tool activity
// produced no readable text. {{question}} is the newest user message,
// {{tool_results}} the serialized tool output from the transcript.
const DefaultSynthesisPrompt = `The tools have already run. Using the tool results below, answer the user's question directly.

Question: {{question}}

Tool results:
{{tool_results}}

Respond with the final answer only. Do not call any more tools.`

// synthState tracks what a turn produced, to decide whether a follow-up
// call is needed for a readable answer. It is owned by one goroutine at a
// time and needs no lock.
type synthState struct {
	text        strings.Builder
	toolCalls   int // calls in the request history plus calls this turn emits
	toolResults int // results carried in the request history
	applied     bool
	inProgress  bool
	finished    bool
}

// newSynthState seeds the tool counters from the request history.
func newSynthState(req provider.Request) *synthState {
	s := &synthState{}
	for _, m := range req.Messages {
		s.toolCalls += len(m.ToolCalls())
		s.toolResults += len(m.ToolResults())
		if m.Role == provider.RoleTool && !m.IsStructured() {
			s.toolResults++
		}
	}
	return s
}

// answerLen is the usable length of the answer produced so far.
func (s *synthState) answerLen() int {
	return len(strings.TrimSpace(s.text.String()))
}

// toolActivity counts the tool traffic visible to this turn.
func (s *synthState) toolActivity() int {
	return s.toolCalls + s.toolResults
}

// needsSynthesis reports whether a turn ended with tool activity but no
// usable answer. Turns without any tool traffic are left alone: a model
// that answered briefly on its own was not starved by tool execution.
func needsSynthesis(cfg SynthesisConfig, s *synthState) bool {
	if cfg.Disabled || s.applied || s.inProgress {
		return false
	}
	if s.toolActivity() == 0 {
		return false
	}
	return s.answerLen() < cfg.MinResponseLength
}

// synthesisResult reports the outcome of follow-up completion attempts.
type synthesisResult struct {
	Text     string
	Usage    provider.TokenUsage
	Attempts int
	Applied  bool
	LastErr  error
}

// synthesisWarning describes a failed synthesis pass, or nil when nothing
// warrants a warning.
func synthesisWarning(res *synthesisResult) *provider.Warning {
	if res.Applied || res.Attempts == 0 {
		return nil
	}
	if res.LastErr != nil {
		return &provider.Warning{
			Code:    provider.WarnSynthesisFailed,
			Message: fmt.Sprintf("follow-up completion failed after %d attempts: %v", res.Attempts, res.LastErr),
		}
	}
	return &provider.Warning{
		Code:    provider.WarnSynthesisExhausted,
		Message: fmt.Sprintf("no follow-up answer cleared the length threshold after %d attempts", res.Attempts),
	}
}

// toolResultBudget caps the serialized tool output carried into the
// follow-up instruction, in tokens. Even the small context windows leave
// this much room next to the transcript.
const toolResultBudget = 2048

// synthesizer makes tool-free follow-up calls when a turn ends without a
// usable answer.
type synthesizer struct {
	cfg    Config
	trans  *transport
	engine *template.Engine
	trunc  *truncate.Truncator
	logger *slog.Logger
}

func newSynthesizer(cfg Config, trans *transport, logger *slog.Logger) *synthesizer {
	return &synthesizer{
		cfg:    cfg,
		trans:  trans,
		engine: template.NewEngine(),
		trunc:  truncate.NewFromMiddle(),
		logger: logger,
	}
}

// synthesize makes up to MaxAttempts follow-up calls and returns the first
// answer that clears the length threshold. Total failure degrades silently:
// Applied stays false and the caller reports a warning instead of an error.
func (s *synthesizer) synthesize(ctx context.Context, base *chatRequest) *synthesisResult {
	result := &synthesisResult{}
	req := s.buildRequest(base)
	minLen := s.cfg.Synthesis.MinResponseLength

	for attempt := 1; attempt <= s.cfg.Synthesis.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return result
		}
		result.Attempts = attempt

		chunk, err := s.attempt(ctx, req)
		if err != nil {
			result.LastErr = err
			s.logger.Warn("synthesis attempt failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			continue
		}

		// Reasoning models may spend the follow-up thinking out loud;
		// only the trimmed answer left after the scratch work counts.
		text := extract.StripThinking(chunk.Message.Content)
		if len(text) < minLen {
			s.logger.Warn("synthesis attempt under length",
				slog.Int("attempt", attempt),
				slog.Int("length", len(text)))
			continue
		}

		result.Text = text
		result.Usage = usageFromChunk(chunk)
		result.Applied = true
		return result
	}
	return result
}

// attempt makes one bounded follow-up call.
func (s *synthesizer) attempt(ctx context.Context, req *chatRequest) (*chatChunk, error) {
	callCtx := ctx
	if s.cfg.Synthesis.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.Synthesis.Timeout)
		defer cancel()
	}
	return s.trans.chat(callCtx, req)
}

// buildRequest derives the follow-up request: identical model and options,
// the original transcript plus a rendered instruction, and no tools.
func (s *synthesizer) buildRequest(base *chatRequest) *chatRequest {
	prompt := s.cfg.Synthesis.Prompt
	if prompt == "" {
		prompt = DefaultSynthesisPrompt
	}

	// Tool output can dwarf a local context window; keep both ends and
	// drop the middle when it runs long.
	results, _ := s.trunc.Truncate(collectToolResults(base.Messages), toolResultBudget)

	rendered, err := s.engine.Render(prompt, map[string]any{
		"question":     lastQuestion(base.Messages),
		"tool_results": results,
	})
	if err != nil {
		s.logger.Warn("synthesis prompt failed to render, using it verbatim",
			slog.Any("error", err))
		rendered = prompt
	}

	messages := make([]chatMessage, 0, len(base.Messages)+1)
	messages = append(messages, base.Messages...)
	messages = append(messages, chatMessage{Role: "user", Content: rendered})

	stream := false
	return &chatRequest{
		Model:     base.Model,
		Messages:  messages,
		Format:    base.Format,
		Options:   base.Options,
		Stream:    &stream,
		KeepAlive: base.KeepAlive,
	}
}

// lastQuestion finds the newest user message that is not tool output.
func lastQuestion(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == "user" && !isToolResultMarker(m.Content) {
			return m.Content
		}
	}
	return ""
}

// collectToolResults gathers the serialized tool output, oldest first.
func collectToolResults(messages []chatMessage) string {
	var results []string
	for _, m := range messages {
		if m.Role == "user" && isToolResultMarker(m.Content) {
			results = append(results, m.Content)
		}
	}
	return strings.Join(results, "\n")
}
