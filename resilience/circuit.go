package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a trial call
	// is allowed through.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(dependency string, from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker guards a single upstream dependency. After MaxFailures
// consecutive failures it opens and rejects calls without invoking the
// operation; once ResetTimeout elapses exactly one trial call is admitted.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	openedUntil time.Time
	trialActive bool
}

// NewCircuitBreaker creates a new circuit breaker for the named dependency.
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

// Name returns the guarded dependency name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute runs the operation through the circuit breaker. When the circuit
// is open, a *CircuitOpenError is returned without invoking op.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.trialActive = false

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return &CircuitOpenError{
			Dependency: cb.name,
			RetryAfter: time.Until(cb.openedUntil),
		}
	case StateHalfOpen:
		// Only the single trial call is allowed through.
		if cb.trialActive {
			return &CircuitOpenError{Dependency: cb.name}
		}
		cb.trialActive = true
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			cb.lastFailure = time.Now()
			if cb.failures >= cb.config.MaxFailures {
				cb.openLocked()
			}
		} else {
			// Reset failure count on success
			cb.failures = 0
		}

	case StateHalfOpen:
		cb.trialActive = false
		if isFailure {
			// Trial failed, back to open with a fresh cooldown
			cb.lastFailure = time.Now()
			cb.openLocked()
		} else {
			// Trial succeeded, close the circuit
			cb.state = StateClosed
			cb.failures = 0
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, oldState, cb.state)
	}
}

func (cb *CircuitBreaker) openLocked() {
	cb.state = StateOpen
	cb.openedUntil = time.Now().Add(cb.config.ResetTimeout)
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && !time.Now().Before(cb.openedUntil) {
		cb.state = StateHalfOpen
		cb.trialActive = false
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(cb.name, StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

// Metrics returns current circuit breaker statistics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		Dependency:  cb.name,
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	Dependency  string
	State       State
	Failures    int
	LastFailure time.Time
}
