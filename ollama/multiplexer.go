package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/ollamakit/provider"
)

// streamBuffer is the event channel capacity. The headroom lets terminal
// events reach consumers that cancel and then drain until close.
const streamBuffer = 16

// injectRunes is how much text each synthesized delta carries.
const injectRunes = 80

// multiplexer owns a live stream end to end. One goroutine forwards
// backend frames as lifecycle events, watches for stalls after tool
// activity, and injects a synthesized answer when the model never
// produces one. All mutable state is confined to that goroutine.
type multiplexer struct {
	cfg      Config
	wire     *chatRequest
	frames   <-chan streamFrame
	out      chan provider.Event
	cancelUp context.CancelFunc
	synth    *synthesizer
	tf       *streamTransformer
	state    *synthState
	warnings []provider.Warning
	logger   *slog.Logger
}

// run drives the stream to completion. It always closes the event channel,
// normally right after a single terminal event.
func (m *multiplexer) run(ctx context.Context) {
	defer close(m.out)
	defer m.cancelUp()

	m.emit(ctx, m.tf.start()...)
	for i := range m.warnings {
		m.emit(ctx, provider.Event{Type: provider.EventWarning, Warning: &m.warnings[i]})
	}

	var idle *time.Timer
	var idleC <-chan time.Time
	if m.watchesIdle() {
		idle = time.NewTimer(m.cfg.Synthesis.Timeout)
		defer idle.Stop()
		idleC = idle.C
	}

	for {
		select {
		case <-ctx.Done():
			m.fail(ctx, ctx.Err())
			return

		case frame, ok := <-m.frames:
			if !ok {
				// Caller cancellation can close the upstream before this
				// loop observes ctx; report the cancellation, not a
				// backend failure.
				if err := ctx.Err(); err != nil {
					m.fail(ctx, err)
					return
				}
				m.fail(ctx, fmt.Errorf("backend stopped mid-stream: %w", provider.ErrStreamClosed))
				return
			}
			if frame.err != nil {
				m.fail(ctx, frame.err)
				return
			}
			if idle != nil {
				resetIdle(idle, m.cfg.Synthesis.Timeout)
			}
			m.observe(frame.chunk)
			m.emit(ctx, m.tf.next(frame.chunk)...)
			if frame.chunk.Done {
				m.finishNatural(ctx, &frame.chunk)
				return
			}

		case <-idleC:
			m.handleIdle(ctx)
			return
		}
	}
}

// watchesIdle reports whether the stall watchdog applies to this stream.
// It covers tool-enabled turns, where the backend is known to run tools and
// then go silent. Ordinary turns stream at the model's own pace.
func (m *multiplexer) watchesIdle() bool {
	return !m.cfg.Synthesis.Disabled &&
		m.cfg.Synthesis.Timeout > 0 &&
		(len(m.wire.Tools) > 0 || m.state.toolActivity() > 0)
}

// observe folds a live chunk into the follow-up bookkeeping.
func (m *multiplexer) observe(c chatChunk) {
	m.state.text.WriteString(c.Message.Content)
	m.state.toolCalls += len(c.Message.ToolCalls)
}

// finishNatural handles the backend's own terminal chunk. When the turn
// ended with tool activity but no usable answer, a follow-up answer is
// injected before the finish event.
func (m *multiplexer) finishNatural(ctx context.Context, last *chatChunk) {
	m.state.finished = true
	reason := mapFinishReason(last)
	usage := usageFromChunk(last)

	if needsSynthesis(m.cfg.Synthesis, m.state) {
		if res := m.runSynthesis(ctx); res.Applied {
			m.emit(ctx, m.tf.closeRuns()...)
			m.injectText(ctx, res.Text)
			usage.Add(res.Usage)
			reason = provider.FinishStop
		}
	}

	m.emit(ctx, m.tf.finish(reason, usage)...)
}

// handleIdle fires when the model goes quiet after tool activity. A
// follow-up answer replaces the stalled turn when one can be made;
// otherwise the stall surfaces as a timeout.
func (m *multiplexer) handleIdle(ctx context.Context) {
	m.cancelUp()
	m.logger.Debug("stream idle, abandoning upstream read",
		slog.Duration("idle", m.cfg.Synthesis.Timeout))

	if needsSynthesis(m.cfg.Synthesis, m.state) {
		if res := m.runSynthesis(ctx); res.Applied {
			m.emit(ctx, m.tf.closeRuns()...)
			m.injectText(ctx, res.Text)
			m.emit(ctx, m.tf.finish(provider.FinishStop, res.Usage)...)
			return
		}
	}

	m.fail(ctx, fmt.Errorf("no output for %s: %w", m.cfg.Synthesis.Timeout, provider.ErrTimeout))
}

// runSynthesis makes the follow-up attempts and reports exhaustion as a
// warning event. The applied flag flips at most once per stream.
func (m *multiplexer) runSynthesis(ctx context.Context) *synthesisResult {
	m.state.inProgress = true
	defer func() { m.state.inProgress = false }()

	res := m.synth.synthesize(ctx, m.wire)
	if res.Applied {
		m.state.applied = true
		return res
	}
	if w := synthesisWarning(res); w != nil {
		m.emit(ctx, provider.Event{Type: provider.EventWarning, Warning: w})
	}
	return res
}

// injectText emits a synthesized answer as an ordinary text run so
// consumers cannot tell it from model output.
func (m *multiplexer) injectText(ctx context.Context, text string) {
	id := newPartID("text")
	m.emit(ctx, provider.Event{Type: provider.EventTextStart, ID: id})
	for _, piece := range splitRunes(text, injectRunes) {
		m.emit(ctx, provider.Event{Type: provider.EventTextDelta, ID: id, Delta: piece})
	}
	m.emit(ctx, provider.Event{Type: provider.EventTextEnd, ID: id})
}

// fail emits the terminal error event. Caller cancellation passes through
// unwrapped so callers can match it with errors.Is.
func (m *multiplexer) fail(ctx context.Context, err error) {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = wrapErr("stream", err)
	}
	m.emit(ctx, m.tf.abort(err)...)
}

// emit delivers events in order. When the caller has canceled, delivery
// degrades to best effort so a draining consumer still sees the terminal
// event without the goroutine blocking forever.
func (m *multiplexer) emit(ctx context.Context, events ...provider.Event) {
	for _, ev := range events {
		select {
		case m.out <- ev:
		case <-ctx.Done():
			select {
			case m.out <- ev:
			default:
				return
			}
		}
	}
}

// resetIdle restarts a timer that may have already fired.
func resetIdle(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// splitRunes cuts s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var pieces []string
	for len(runes) > n {
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return append(pieces, string(runes))
}
