// Package extract pulls structured content out of raw model output.
//
// Local models rarely return bare payloads: the JSON they were asked for
// arrives wrapped in prose or code fences, and reasoning builds sometimes
// leak their scratch work in <think> tags. This package digs the useful
// parts back out.
//
// Core types:
//   - Extractor: Extracts code blocks, JSON, YAML, sections, and lists
//   - CodeBlock: A fenced code block with language and content
//
// Example usage:
//
//	e := extract.New()
//
//	// Access extracted code blocks
//	for _, block := range e.AllCode(output) {
//	    fmt.Printf("Language: %s\nCode:\n%s\n", block.Language, block.Content)
//	}
//
//	// First JSON object, fenced or inline
//	data := e.JSON(output)
//
// Convenience functions:
//
//	data := extract.JSON(output)
//	code := extract.Code(output, "go")
//	err := extract.Unmarshal(output, &result)
//	answer := extract.StripThinking(output)
package extract
