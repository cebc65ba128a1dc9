package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure. It is assigned once, at the adapter
// boundary, so downstream retry/backoff logic never inspects error text.
type Kind string

const (
	// KindRateLimited means the vendor throttled us. Retryable with backoff.
	KindRateLimited Kind = "rate_limited"
	// KindNetwork covers transient transport failures. Retryable.
	KindNetwork Kind = "network"
	// KindNotFound means the vendor does not know the identifier. The
	// fallback coordinator moves on to the next source.
	KindNotFound Kind = "not_found"
	// KindAuthFailed means credentials were rejected. Aborts the whole run;
	// retrying or skipping would hide an operator problem.
	KindAuthFailed Kind = "auth_failed"
	// KindUnsupported marks an item the loader cannot handle at all. Tasks
	// fail with a skip, before any network attempt.
	KindUnsupported Kind = "unsupported"
	// KindDataIntegrity means the payload arrived but failed to decode.
	// Not retried; the payload is unlikely to change.
	KindDataIntegrity Kind = "data_integrity"
)

// Error is the classified failure type all adapters return.
type Error struct {
	// Source names the vendor the failure came from.
	Source string
	// Kind is the failure classification.
	Kind Kind
	// StatusCode is the HTTP status, when the failure came off the wire.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class is worth retrying.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetwork
}

// NewError builds a classified error.
func NewError(source string, kind Kind, err error) *Error {
	return &Error{Source: source, Kind: kind, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors
// report KindNetwork, the conservative retryable default.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}

// IsRetryable reports whether err, anywhere in its chain, is a retryable
// fetch failure.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 429:
		return KindRateLimited
	case status == 401 || status == 403:
		return KindAuthFailed
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindNetwork
	default:
		return KindDataIntegrity
	}
}
