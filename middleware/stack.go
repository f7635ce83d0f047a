package middleware

import (
	"github.com/openjuris/lexgate/auth"
	"github.com/openjuris/lexgate/observe"
	"github.com/openjuris/lexgate/resilience"
)

// StackConfig assembles the canonical chain.
type StackConfig struct {
	// Authenticators are tried in order. Required.
	Authenticators []auth.Authenticator

	// Limiter enforces per-caller quotas. Required.
	Limiter *resilience.ClientLimiter

	// Sanitize bounds caller input. Zero values get defaults.
	Sanitize SanitizeConfig

	Logger  observe.Logger
	Metrics observe.Metrics
}

// NewStack builds the canonical chain:
// authenticate, sanitize, ratelimit, observe.
func NewStack(config StackConfig) *Chain {
	return NewChain(
		NewAuthenticate(config.Authenticators...),
		NewSanitize(config.Sanitize),
		NewRateLimit(config.Limiter),
		NewObserve(config.Logger, config.Metrics),
	)
}
