package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAggregatorCheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register("a", NewCheckerFunc("a", func(context.Context) Result {
		return Healthy("fine")
	}))
	agg.Register("b", NewCheckerFunc("b", func(context.Context) Result {
		return Degraded("slow")
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["a"].Status != StatusHealthy {
		t.Errorf("a status = %v, want healthy", results["a"].Status)
	}
	if results["b"].Status != StatusDegraded {
		t.Errorf("b status = %v, want degraded", results["b"].Status)
	}
	if got := OverallStatus(results); got != StatusDegraded {
		t.Errorf("OverallStatus() = %v, want degraded", got)
	}
}

func TestOverallStatusFolding(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]Result{
			"a": Degraded(""), "b": Unhealthy("", errors.New("down")),
		}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregatorCheckNotFound(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregatorTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})
	agg.Register("stuck", NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(time.Second)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	result := results["stuck"]
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", result.Status)
	}
	if !errors.Is(result.Error, ErrCheckTimeout) {
		t.Errorf("error = %v, want ErrCheckTimeout", result.Error)
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusHealthy.String(); got != "healthy" {
		t.Errorf("String() = %q, want %q", got, "healthy")
	}
	if got := Status(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
