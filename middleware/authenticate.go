package middleware

import (
	"context"
	"fmt"

	"github.com/openjuris/lexgate/auth"
)

// Authenticate resolves the caller identity before anything else runs.
// Authenticators are tried in order; the first one whose scheme the
// request carries decides the outcome.
type Authenticate struct {
	authenticators []auth.Authenticator
}

var _ Middleware = (*Authenticate)(nil)

func NewAuthenticate(authenticators ...auth.Authenticator) *Authenticate {
	return &Authenticate{authenticators: authenticators}
}

func (a *Authenticate) Name() string { return "authenticate" }

func (a *Authenticate) Handle(ctx context.Context, req *Request, next Next) (*Response, error) {
	authReq := &auth.AuthRequest{Headers: req.Headers, Operation: req.Operation}

	for _, authn := range a.authenticators {
		if !authn.Supports(authReq) {
			continue
		}
		result, err := authn.Authenticate(ctx, authReq)
		if err != nil {
			return nil, fmt.Errorf("middleware: %s authenticator: %w", authn.Name(), err)
		}
		if result.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, result.Err)
		}
		req.Identity = result.Identity
		return next(auth.WithIdentity(ctx, result.Identity), req)
	}

	return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, auth.ErrMissingCredentials)
}
