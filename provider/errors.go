package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends. Backend packages wrap these
// so callers can classify failures without knowing the wire format.
var (
	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the backend is unreachable or not running.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrModelNotFound indicates the backend does not have the requested model.
	ErrModelNotFound = errors.New("model not found")

	// ErrContextTooLong indicates the input exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrStreamClosed indicates an operation on a stream that has ended.
	ErrStreamClosed = errors.New("stream closed")

	// ErrCapabilityNotSupported indicates the backend doesn't support the
	// requested capability. This is a configuration error detected before
	// any backend call is made.
	ErrCapabilityNotSupported = errors.New("capability not supported by backend")
)

// Error records what failed and where. Backends wrap every surfaced
// failure in one so callers can route on provider, operation, and
// retryability.
type Error struct {
	Provider  string // backend name ("ollama", etc.)
	Op        string // operation that failed ("complete", "stream", "embed")
	Err       error  // underlying error
	Retryable bool   // whether the failure is likely transient
}

// Error formats as "provider op: err".
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable reports whether an error is worth retrying. Explicit
// Error values carry their own flag; bare sentinels fall back to the
// transient set.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsCapabilityError checks if an error is due to a missing backend capability.
func IsCapabilityError(err error) bool {
	return errors.Is(err, ErrCapabilityNotSupported)
}
