package resilience

import (
	"context"
	"sync"
)

// Registry holds one circuit breaker per upstream dependency name,
// created lazily on first use with a shared configuration.
type Registry struct {
	config CircuitBreakerConfig

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a new breaker registry. All breakers it creates
// share the given configuration.
func NewRegistry(config CircuitBreakerConfig) *Registry {
	return &Registry{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for the named dependency, creating it if needed.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[name]
	if !ok {
		cb = NewCircuitBreaker(name, r.config)
		r.breakers[name] = cb
	}
	return cb
}

// Execute runs the operation through the named dependency's breaker.
func (r *Registry) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	return r.Get(name).Execute(ctx, op)
}

// State returns the current state of the named dependency's breaker.
// An unregistered dependency reports closed, matching a breaker that has
// never seen a failure.
func (r *Registry) State(name string) State {
	r.mu.Lock()
	cb, ok := r.breakers[name]
	r.mu.Unlock()

	if !ok {
		return StateClosed
	}
	return cb.State()
}

// States returns a snapshot of every registered breaker's state.
func (r *Registry) States() map[string]State {
	r.mu.Lock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.Unlock()

	states := make(map[string]State, len(breakers))
	for _, cb := range breakers {
		states[cb.Name()] = cb.State()
	}
	return states
}

// AllHealthy returns false if any registered breaker is not closed.
func (r *Registry) AllHealthy() bool {
	for _, state := range r.States() {
		if state != StateClosed {
			return false
		}
	}
	return true
}
