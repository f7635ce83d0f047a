package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openjuris/lexgate/auth"
)

// Request is the unit of work flowing through the chain.
type Request struct {
	// ID is the gateway-assigned request identifier.
	ID string

	// Operation names the gateway operation being invoked.
	Operation string

	// Params are the caller-supplied operation parameters.
	Params map[string]any

	// Headers are the transport headers, used for credential extraction.
	Headers map[string]string

	// Identity is filled in by the authentication step.
	Identity *auth.Identity

	// StartedAt is when the request entered the pipeline.
	StartedAt time.Time
}

// Response is the outcome handed back up the chain.
type Response struct {
	Result json.RawMessage

	// Cached reports whether the result was served from the response cache.
	Cached bool
}

// Next invokes the remainder of the chain, ending at the core operation.
type Next func(ctx context.Context, req *Request) (*Response, error)

// Middleware is one step of the chain. Handle may short-circuit by
// returning without calling next.
type Middleware interface {
	Name() string
	Handle(ctx context.Context, req *Request, next Next) (*Response, error)
}

// Chain is an ordered list of middleware. Order is data: the first element
// is the outermost wrapper.
type Chain struct {
	steps []Middleware
}

func NewChain(steps ...Middleware) *Chain {
	return &Chain{steps: steps}
}

// Append returns a new chain with the given steps added after the
// existing ones.
func (c *Chain) Append(steps ...Middleware) *Chain {
	combined := make([]Middleware, 0, len(c.steps)+len(steps))
	combined = append(combined, c.steps...)
	combined = append(combined, steps...)
	return &Chain{steps: combined}
}

// Names returns the step names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.steps))
	for i, m := range c.steps {
		names[i] = m.Name()
	}
	return names
}

// Then composes the chain around core, producing a single callable. Steps
// are wrapped back to front so that c.steps[0] runs first.
func (c *Chain) Then(core Next) Next {
	next := core
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		inner := next
		next = func(ctx context.Context, req *Request) (*Response, error) {
			return step.Handle(ctx, req, inner)
		}
	}
	return next
}

// Execute runs the request through the chain and into core.
func (c *Chain) Execute(ctx context.Context, req *Request, core Next) (*Response, error) {
	return c.Then(core)(ctx, req)
}
