package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/randalmurphal/ollamakit/models"
	"github.com/randalmurphal/ollamakit/provider"
)

const providerName = "ollama"

// Client talks to a locally running Ollama server.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	trans      *transport
	synth      *synthesizer
}

var _ provider.Client = (*Client)(nil)

// NewClient creates a client from defaults plus options.
//
// Example:
//
//	client, err := ollama.NewClient(
//		ollama.WithModel("llama3.2"),
//		ollama.WithBaseURL("http://localhost:11434"),
//	)
func NewClient(opts ...Option) (*Client, error) {
	return NewClientWithConfig(DefaultConfig(), opts...)
}

// NewClientWithConfig creates a client from an explicit config. Options
// apply on top of cfg, then defaults fill any unset fields.
func NewClientWithConfig(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cfg = c.cfg.WithDefaults()
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.trans = newTransport(c.cfg.BaseURL, c.httpClient, c.logger)
	c.synth = newSynthesizer(c.cfg, c.trans, c.logger)
	return c, nil
}

// Provider returns the provider name.
func (c *Client) Provider() string {
	return providerName
}

// Capabilities reports what the configured model supports.
func (c *Client) Capabilities() provider.Capabilities {
	info := models.Lookup(c.cfg.Model)
	return provider.Capabilities{
		Streaming:        true,
		Tools:            info.Tools,
		Vision:           info.Vision,
		Reasoning:        info.Reasoning,
		StructuredOutput: !info.Embedding,
		Embeddings:       info.Embedding,
	}
}

// Close releases idle connections. The client is unusable afterwards.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Complete makes a blocking completion call. When the turn saw tool
// activity but the model answered with next to nothing, a tool-free
// follow-up call fills in the answer; its attempt count is recorded under
// the "synthesis_attempts" metadata key. Tool calls the model requested
// stay on the response either way.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	wire, warnings, err := translateRequest(c.cfg, c.Capabilities(), req)
	if err != nil {
		return nil, wrapErr("complete", err)
	}
	stream := false
	wire.Stream = &stream

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	c.logger.Debug("chat request",
		slog.String("model", wire.Model),
		slog.Int("messages", len(wire.Messages)))

	chunk, err := c.trans.chat(ctx, wire)
	if err != nil {
		return nil, wrapErr("complete", err)
	}
	resp := normalizeResponse(chunk, warnings)

	if len(req.Metadata) > 0 {
		resp.Metadata = make(map[string]any, len(req.Metadata))
		for k, v := range req.Metadata {
			resp.Metadata[k] = v
		}
	}

	state := newSynthState(req)
	state.text.WriteString(resp.Content)
	state.toolCalls += len(resp.ToolCalls)
	state.finished = true

	if needsSynthesis(c.cfg.Synthesis, state) {
		res := c.synth.synthesize(ctx, wire)
		if res.Applied {
			resp.Content = res.Text
			resp.Usage.Add(res.Usage)
			resp.FinishReason = provider.FinishStop
			if resp.Metadata == nil {
				resp.Metadata = make(map[string]any)
			}
			resp.Metadata["synthesis_attempts"] = res.Attempts
		} else if w := synthesisWarning(res); w != nil {
			resp.Warnings = append(resp.Warnings, *w)
		}
	}

	return resp, nil
}

// Stream makes a streaming completion call. The returned channel carries
// lifecycle events in order and is closed after a terminal event.
// Consumers should drain it until close; cancel ctx to stop early.
func (c *Client) Stream(ctx context.Context, req provider.Request) (<-chan provider.Event, error) {
	wire, warnings, err := translateRequest(c.cfg, c.Capabilities(), req)
	if err != nil {
		return nil, wrapErr("stream", err)
	}
	stream := true
	wire.Stream = &stream

	var upCtx context.Context
	var cancelUp context.CancelFunc
	if c.cfg.RequestTimeout > 0 {
		upCtx, cancelUp = context.WithTimeout(ctx, c.cfg.RequestTimeout)
	} else {
		upCtx, cancelUp = context.WithCancel(ctx)
	}

	c.logger.Debug("chat stream request",
		slog.String("model", wire.Model),
		slog.Int("messages", len(wire.Messages)))

	frames, err := c.trans.chatStream(upCtx, wire)
	if err != nil {
		cancelUp()
		return nil, wrapErr("stream", err)
	}

	mux := &multiplexer{
		cfg:      c.cfg,
		wire:     wire,
		frames:   frames,
		out:      make(chan provider.Event, streamBuffer),
		cancelUp: cancelUp,
		synth:    c.synth,
		tf:       newStreamTransformer(),
		state:    newSynthState(req),
		warnings: warnings,
		logger:   c.logger,
	}
	go mux.run(ctx)
	return mux.out, nil
}

// Embed returns one embedding vector per input, using the configured model.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, wrapErr("embed", fmt.Errorf("%w: no inputs", provider.ErrInvalidRequest))
	}

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := c.trans.embed(ctx, &embedRequest{
		Model:     c.cfg.Model,
		Input:     inputs,
		KeepAlive: c.cfg.KeepAlive,
	})
	if err != nil {
		return nil, wrapErr("embed", err)
	}
	return resp.Embeddings, nil
}

// isRetryable reports whether a retry could plausibly succeed.
func isRetryable(err error) bool {
	return errors.Is(err, provider.ErrUnavailable) ||
		errors.Is(err, provider.ErrRateLimited) ||
		errors.Is(err, provider.ErrTimeout)
}

// wrapErr tags an error with the provider name and operation.
func wrapErr(op string, err error) error {
	return provider.NewError(providerName, op, err, isRetryable(err))
}
