// Package provider defines the unified interface for locally hosted LLM backends.
//
// This package enables seamless switching between model runtimes (Ollama today,
// llama.cpp or vLLM gateways behind the same wire format) while maintaining a
// consistent API. Requests and responses are provider-agnostic; each backend
// package translates them to and from its native wire format and registers a
// factory here.
//
// # Usage
//
// Create a client using the registry:
//
//	client, err := provider.New("ollama", provider.Config{
//	    Model:   "llama3.1:8b",
//	    BaseURL: "http://localhost:11434",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Check capabilities before using backend-specific features
//	caps := client.Capabilities()
//	if caps.StructuredOutput {
//	    // Safe to request JSON-schema constrained output
//	}
//
// # Streaming
//
// Stream returns a channel of lifecycle events rather than raw text chunks.
// Text and reasoning content arrive as start/delta/end runs keyed by part ID,
// tool invocations arrive as single events, and every stream ends with exactly
// one terminal event (Finish or Error) before the channel closes. Use
// Accumulator or Collect to fold a stream back into a Response.
package provider

import "context"

// Client is the unified interface for LLM backends.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a request and returns the full response.
	// The context controls cancellation and timeouts.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of lifecycle events.
	// The channel is closed after the terminal event (EventFinish or
	// EventError). Errors after the stream starts are delivered in-band
	// via EventError.
	Stream(ctx context.Context, req Request) (<-chan Event, error)

	// Provider returns the backend name (e.g., "ollama").
	Provider() string

	// Capabilities returns what this backend natively supports.
	// Use this to check for features before attempting to use them.
	Capabilities() Capabilities

	// Close releases any resources held by the client.
	Close() error
}

// Capabilities describes what a backend natively supports.
// Use this to make informed decisions about feature availability
// before attempting operations that may not be supported.
type Capabilities struct {
	// Streaming indicates if the backend supports streaming responses.
	Streaming bool `json:"streaming"`

	// Tools indicates if the backend supports tool/function calling.
	Tools bool `json:"tools"`

	// Vision indicates if the backend accepts image inputs.
	Vision bool `json:"vision"`

	// Reasoning indicates if the backend emits separate reasoning content.
	Reasoning bool `json:"reasoning"`

	// StructuredOutput indicates if the backend can constrain output to a
	// JSON schema. Requesting a schema-constrained format from a backend
	// without this capability is a configuration error.
	StructuredOutput bool `json:"structured_output"`

	// Embeddings indicates if the backend can produce embedding vectors.
	Embeddings bool `json:"embeddings"`
}
