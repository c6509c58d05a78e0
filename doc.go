// Package ollamakit provides utilities for running LLM workloads against
// a local Ollama server.
//
// ollamakit wraps the Ollama HTTP API behind a normalized client contract
// and ships the plumbing that working with small local models actually
// requires: marker-encoded tool calling, answer synthesis for tool-heavy
// turns, stream lifecycle events, and output extraction. Each subpackage
// can be used independently:
//
//   - provider: Normalized client contract, registry, config files, schemas
//   - ollama: Ollama backend with streaming, tools, and synthesis
//   - models: Model capability lookup, size tiers, usage tracking, fallbacks
//   - template: Prompt template rendering with {{variable}} syntax
//   - tokens: Token counting and budget management
//   - extract: Extract JSON, YAML, and code blocks from model output
//   - truncate: Token-aware text truncation strategies
//   - rerank: Embedding-based document reranking
//
// # Quick Start
//
// Completion against a local server:
//
//	import "github.com/randalmurphal/ollamakit/ollama"
//
//	client, _ := ollama.NewClient(ollama.WithModel("llama3.1:8b"))
//	resp, _ := client.Complete(ctx, provider.Request{
//	    Messages: []provider.Message{
//	        provider.NewTextMessage(provider.RoleUser, "What is 2+2?"),
//	    },
//	})
//
// Streaming with lifecycle events:
//
//	events, _ := client.Stream(ctx, req)
//	for ev := range events {
//	    if ev.Type == provider.EventTextDelta {
//	        fmt.Print(ev.Delta)
//	    }
//	}
//
// Through the registry:
//
//	import (
//	    "github.com/randalmurphal/ollamakit/provider"
//	    _ "github.com/randalmurphal/ollamakit/providers"
//	)
//
//	client, _ := provider.New("ollama", provider.Config{Model: "llama3.1:8b"})
//
// # Design Philosophy
//
// ollamakit follows these principles:
//
//   - Local-first: no API keys, no cloud round trips
//   - Each package usable independently
//   - Stable, semver-friendly API
//   - Sensible defaults with full configurability
//   - Interfaces for extensibility, concrete types for simplicity
package ollamakit
