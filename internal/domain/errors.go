package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals a malformed search query. Caller bug, never retried.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidDocument signals a malformed document. Caller bug, never retried.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidDocumentSet signals a document set that violates index
	// invariants (empty, or duplicate ids with conflicting content).
	ErrInvalidDocumentSet = errors.New("invalid document set")

	// ErrRateLimited signals an exhausted local request budget or a deadline
	// that expired while waiting for a slot. Back off and retry later.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable signals a transient provider failure that
	// survived the client's own retries. Retry later.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderRejected signals a permanent provider failure (bad request,
	// auth, provider-side quota). Retrying will not help.
	ErrProviderRejected = errors.New("provider rejected request")
)

// ProviderError carries a provider failure with its HTTP-level status and
// transience classification. Unwraps onto ErrProviderUnavailable or
// ErrProviderRejected so callers branch with errors.Is.
type ProviderError struct {
	Status    int
	Transient bool
	Message   string
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status > 0 {
		return fmt.Sprintf("provider error (%s, status %d): %s", kind, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error (%s): %s", kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	if e.Transient {
		return ErrProviderUnavailable
	}
	return ErrProviderRejected
}

// NewProviderError classifies a provider failure by HTTP status.
// Connection-level failures (status 0), 408 and 5xx are transient; any other
// 4xx, 429 included, is permanent.
func NewProviderError(status int, message string) *ProviderError {
	transient := status == 0 || status == 408 || status >= 500
	return &ProviderError{Status: status, Transient: transient, Message: message}
}

// Retryable reports whether the caller may reasonably retry the failed
// operation later.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}
