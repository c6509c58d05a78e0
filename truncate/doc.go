// Package truncate cuts text down to token or length budgets.
//
// Prompt material routinely outgrows what a local model can take: tool
// output, file contents, scraped pages. This package reduces text to a
// budget while marking where the cut happened.
//
// # Strategies
//
// A Truncator works in tokens and keeps a chosen part of the text:
//
//   - FromEnd keeps the head (default)
//   - FromMiddle keeps both ends, useful for logs where the setup and
//     the outcome matter more than the middle
//   - FromStart keeps the tail
//
// The truncation marker spends part of the budget, so results fit the
// limit marker included:
//
//	tr := truncate.NewFromMiddle()
//	out, cut := tr.Truncate(toolOutput, 2048)
//
// # Token Counting
//
// Budgets are measured with the estimating counter from the tokens
// package (~4 chars per token). Substitute a real tokenizer with
// WithCounter:
//
//	tr := truncate.NewFromEnd().WithCounter(myCounter)
//
// # Convenience Functions
//
// One-off cuts skip the Truncator:
//
//	truncate.ToTokens(text, 100)  // token budget, end truncation
//	truncate.ToLines(text, 50)    // keep the first 50 lines
//	truncate.ToLength(text, 500)  // keep the first 500 runes
//	truncate.Smart(text, 500)     // prefer sentence and word breaks
//
// ToModelWindow fits text to a model's context window, holding back
// room for the response:
//
//	truncate.ToModelWindow(text, "mistral:7b", 2048)
//
// All functions count runes rather than bytes, so UTF-8 text never
// splits mid-character.
package truncate
