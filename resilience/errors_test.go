package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrTimeoutMatchesDeadlineExceeded(t *testing.T) {
	if !errors.Is(ErrTimeout, context.DeadlineExceeded) {
		t.Error("errors.Is(ErrTimeout, context.DeadlineExceeded) = false, want true")
	}
}

func TestCircuitOpenError(t *testing.T) {
	err := &CircuitOpenError{Dependency: "research-api", RetryAfter: 3 * time.Second}

	if !errors.Is(err, ErrCircuitOpen) {
		t.Error("errors.Is(err, ErrCircuitOpen) = false, want true")
	}
	if !strings.Contains(err.Error(), "research-api") {
		t.Errorf("Error() = %q, want dependency name included", err.Error())
	}
	if !strings.Contains(err.Error(), "retry after") {
		t.Errorf("Error() = %q, want retry guidance included", err.Error())
	}

	// Without a cooldown, no guidance is claimed
	bare := &CircuitOpenError{Dependency: "research-api"}
	if strings.Contains(bare.Error(), "retry after") {
		t.Errorf("Error() = %q, want no retry guidance", bare.Error())
	}
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{ClientID: "key-123", RetryAfterSeconds: 7}

	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Error("errors.Is(err, ErrRateLimitExceeded) = false, want true")
	}
	if !strings.Contains(err.Error(), "7s") {
		t.Errorf("Error() = %q, want retry-after seconds included", err.Error())
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{ErrCircuitOpen, ErrRateLimitExceeded, ErrTimeout, ErrQueueClosed}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v, want distinct", a, b)
			}
		}
	}
}
