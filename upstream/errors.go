package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnknownOperation indicates an operation name with no mapped endpoint.
var ErrUnknownOperation = errors.New("upstream: unknown operation")

// Error is a failed upstream exchange. Status 0 means the request never
// produced an HTTP response (connection refused, DNS failure, timeout).
type Error struct {
	Status    int
	Message   string
	Operation string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream: %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("upstream: %s: status %d: %s", e.Operation, e.Status, e.Message)
}

// Retryable reports whether retrying the same request could succeed.
// Server-side faults and transport failures are retryable; 4xx responses
// are terminal because the request itself is wrong.
func (e *Error) Retryable() bool {
	if e.Status == 0 {
		return true
	}
	return e.Status >= 500
}

// IsRetryable classifies an arbitrary error from a client call. Used as
// the retry predicate when composing the client with a retry executor.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return false
}
