// Package tokens provides token counting and context window accounting
// for prompts sent to local models.
//
// Token estimation uses the rule of thumb that roughly 4 characters make
// one token of English text. That is close enough for budgeting without
// dragging in a model-specific tokenizer.
//
// # Counter
//
// The Counter interface provides token counting methods:
//
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, world!")     // ~3 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// For one-off counting, use the convenience function:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// # Window
//
// Window sizes a transcript against a model's context window. Local
// servers silently drop the oldest turns when a prompt runs over, so
// measuring beforehand is the only way to notice:
//
//	w := tokens.WindowFor("mistral:7b")          // 32768 tokens
//	w = w.WithReserve(2048)                      // room for the answer
//
//	if over := w.Overflow(msgs...); over > 0 {
//	    // trim roughly `over` tokens from the transcript
//	}
//
// # Model Limits
//
// Context window sizes come from the models package's family table:
//
//	limit := tokens.GetModelLimit("llama3.1:8b")      // 131072
//	limit := tokens.GetModelLimit("unknown-model")    // 8192 (default)
package tokens
