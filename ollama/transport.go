package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/randalmurphal/ollamakit/provider"
)

// maxScanBuf bounds a single NDJSON line. Chunks carrying base64 images or
// large tool arguments can exceed bufio's default 64KiB.
const maxScanBuf = 1 << 20

// transport issues HTTP calls against one Ollama server.
type transport struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newTransport(baseURL string, hc *http.Client, logger *slog.Logger) *transport {
	return &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

// streamFrame is one upstream item: a decoded chunk or a terminal read error.
// After an error frame no further frames arrive.
type streamFrame struct {
	chunk chatChunk
	err   error
}

// chat makes a non-streaming completion call.
func (t *transport) chat(ctx context.Context, req *chatRequest) (*chatChunk, error) {
	resp, err := t.post(ctx, "/api/chat", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chunk chatChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if chunk.Error != "" {
		return nil, fmt.Errorf("%w: %s", provider.ErrInvalidRequest, chunk.Error)
	}
	return &chunk, nil
}

// chatStream makes a streaming completion call. The returned channel
// delivers chunks in arrival order, then at most one error frame, and is
// closed when the upstream ends for any reason. Cancel ctx to abandon the
// stream early.
func (t *transport) chatStream(ctx context.Context, req *chatRequest) (<-chan streamFrame, error) {
	resp, err := t.post(ctx, "/api/chat", req)
	if err != nil {
		return nil, err
	}

	frames := make(chan streamFrame)
	go t.readStream(ctx, resp.Body, frames)
	return frames, nil
}

// readStream scans NDJSON lines into frames until done, EOF, or cancellation.
func (t *transport) readStream(ctx context.Context, body io.ReadCloser, frames chan<- streamFrame) {
	defer close(frames)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanBuf)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			t.send(ctx, frames, streamFrame{err: fmt.Errorf("decode chunk: %w", err)})
			return
		}
		if chunk.Error != "" {
			t.send(ctx, frames, streamFrame{err: fmt.Errorf("%w: %s", provider.ErrInvalidRequest, chunk.Error)})
			return
		}

		if !t.send(ctx, frames, streamFrame{chunk: chunk}) {
			return
		}
		if chunk.Done {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		t.send(ctx, frames, streamFrame{err: classifyConnError(ctx, err)})
		return
	}
	// The upstream closed without a terminal chunk.
	t.send(ctx, frames, streamFrame{err: fmt.Errorf("%w: stream ended early", io.ErrUnexpectedEOF)})
}

// send delivers a frame unless the consumer is gone.
func (t *transport) send(ctx context.Context, frames chan<- streamFrame, f streamFrame) bool {
	select {
	case frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// embed returns embedding vectors for the request inputs.
func (t *transport) embed(ctx context.Context, req *embedRequest) (*embedResponse, error) {
	resp, err := t.post(ctx, "/api/embed", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// post sends a JSON body and returns a 2xx response, classifying failures
// onto the provider sentinel errors. The caller owns the response body.
func (t *transport) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(httpReq)
	if err != nil {
		return nil, classifyConnError(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, t.apiError(resp)
	}
	return resp, nil
}

// apiError maps a non-2xx response onto the provider error vocabulary.
func (t *transport) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(body))
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", provider.ErrModelNotFound, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", provider.ErrRateLimited, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", provider.ErrInvalidRequest, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", provider.ErrUnavailable, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}

// classifyConnError maps connection-level failures onto the provider error
// vocabulary. Context cancellation passes through unwrapped so callers can
// distinguish caller intent from backend failure.
func classifyConnError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return context.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", provider.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
	}
}
