package auth

import (
	"context"
	"strings"
)

// AuthRequest carries the credential material extracted from an incoming
// call. Headers hold the raw transport headers; Operation names the
// gateway operation being invoked, for audit logging.
type AuthRequest struct {
	Headers   map[string]string
	Operation string
}

// GetHeader returns the named header, trying the exact key first and then
// a small set of common casings.
func (r *AuthRequest) GetHeader(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	Identity *Identity
	Err      error
}

// Authenticator validates a credential scheme.
type Authenticator interface {
	// Name identifies the scheme, e.g. "apikey" or "jwt".
	Name() string

	// Supports reports whether the request carries a credential this
	// authenticator understands. A request no authenticator supports is
	// rejected with ErrMissingCredentials.
	Supports(req *AuthRequest) bool

	// Authenticate validates the credential and resolves the caller identity.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// Success builds a passing result.
func Success(id *Identity) *AuthResult {
	return &AuthResult{Identity: id}
}

// Failure builds a failing result.
func Failure(err error) *AuthResult {
	return &AuthResult{Err: err}
}
