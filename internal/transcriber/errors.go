package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"

	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/sashabaranov/go-openai"
)

// Kind classifies why a transcription failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedProvider
	KindInvalidAudio
	KindBackendUnreachable
	KindBackendAuthFailure
	KindBackend
	KindMalformedResponse
	KindServiceNotRunning
	KindMissingConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedProvider:
		return "unsupported provider"
	case KindInvalidAudio:
		return "invalid audio"
	case KindBackendUnreachable:
		return "backend unreachable"
	case KindBackendAuthFailure:
		return "backend auth failure"
	case KindBackend:
		return "backend error"
	case KindMalformedResponse:
		return "malformed response"
	case KindServiceNotRunning:
		return "service not running"
	case KindMissingConfiguration:
		return "missing configuration"
	default:
		return "unknown"
	}
}

// Retryable reports whether the same call may succeed later without changes.
func (k Kind) Retryable() bool {
	switch k {
	case KindBackendUnreachable, KindServiceNotRunning, KindBackend:
		return true
	}
	return false
}

// ErrTranscriptionFailed is matched by every error the Dispatcher returns.
var ErrTranscriptionFailed = errors.New("error in transcribing audio")

// Error is the structured failure produced inside the package.
type Error struct {
	Kind     Kind
	Provider provider.ID
	Err      error

	stack []byte // goroutine stack where the failure was first classified
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stack returns the goroutine stack captured when e was created
func (e *Error) Stack() []byte {
	return e.stack
}

func newError(kind Kind, id provider.ID, err error) *Error {
	return &Error{Kind: kind, Provider: id, Err: err, stack: debug.Stack()}
}

// FailedError is the uniform error returned at the Dispatcher boundary.
// Its message never varies; the cause stays reachable through errors.As.
type FailedError struct {
	Cause *Error
}

func (e *FailedError) Error() string {
	return ErrTranscriptionFailed.Error()
}

func (e *FailedError) Is(target error) bool {
	return target == ErrTranscriptionFailed
}

func (e *FailedError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// KindOf extracts the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err carries a retryable Kind.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// wrapError turns any adapter failure into an *Error, keeping an existing one as is.
func wrapError(id provider.ID, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(classify(err), id, err)
}

func classify(err error) Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindBackendUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindBackendUnreachable
	}
	return KindBackend
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindBackendAuthFailure
	default:
		return KindBackend
	}
}
