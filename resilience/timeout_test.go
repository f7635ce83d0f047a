package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Defaults(t *testing.T) {
	to := NewTimeout(TimeoutConfig{})

	if to.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", to.config.Timeout)
	}
}

func TestTimeout_CompletesInTime(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestTimeout_Expires(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	err := to.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("Execute() returned after %v, want ~20ms", elapsed)
	}
}

func TestTimeout_PropagatesOperationError(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	opErr := errors.New("op failed")
	err := to.Execute(context.Background(), func(ctx context.Context) error {
		return opErr
	})
	if err != opErr {
		t.Errorf("Execute() error = %v, want %v", err, opErr)
	}
}

func TestTimeout_ParentCancellation(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
