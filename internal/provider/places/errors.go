package places

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so the orchestrator can map them to
// caller-visible errors and decide retryability.
type ErrorKind int

const (
	// KindUpstream is a provider-side failure (5xx or malformed response).
	KindUpstream ErrorKind = iota
	// KindTimeout is a request deadline or transport timeout.
	KindTimeout
	// KindQuotaExceeded is a provider rate or usage limit rejection.
	KindQuotaExceeded
	// KindAccessDenied is an authentication or permission failure.
	KindAccessDenied
	// KindNoResults means the query matched nothing.
	KindNoResults
)

// Error is a typed provider error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("places: %s: %v", e.Message, e.Err)
	}
	return "places: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the queue orchestrator should retry this failure.
// Access denials and empty result sets will not improve on retry.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindAccessDenied, KindNoResults:
		return false
	default:
		return true
	}
}

// KindOf extracts the error kind, defaulting to upstream for untyped errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUpstream
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
