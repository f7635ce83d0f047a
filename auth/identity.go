package auth

import "time"

// Method names the credential scheme that produced an Identity.
type Method string

const (
	MethodAPIKey    Method = "apikey"
	MethodJWT       Method = "jwt"
	MethodAnonymous Method = "anonymous"
)

// Identity is the resolved caller of a gateway request.
type Identity struct {
	// Principal is the stable caller identifier, used as the rate limit
	// client id.
	Principal string

	// AccountID ties the caller to a billing account in the front-end.
	AccountID string

	// Plan is the subscription tier, e.g. "free" or "pro". Empty means the
	// default plan.
	Plan string

	// RateLimit overrides the per-window request allowance for this caller.
	// Zero means the limiter default applies.
	RateLimit int

	Method    Method
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the identity's credential has expired.
// A zero ExpiresAt never expires.
func (id *Identity) IsExpired() bool {
	if id == nil || id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether this identity represents an unauthenticated
// caller.
func (id *Identity) IsAnonymous() bool {
	return id == nil || id.Method == MethodAnonymous
}

// Anonymous returns the identity assigned to unauthenticated callers on
// endpoints that allow them, such as health checks.
func Anonymous() *Identity {
	return &Identity{Principal: "anonymous", Method: MethodAnonymous}
}
