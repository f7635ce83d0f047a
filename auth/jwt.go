package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the bearer token authenticator. Tokens are minted
// by the account front-end with a shared HMAC key, so only HS256 is
// accepted.
type JWTConfig struct {
	// SigningKey verifies token signatures. Required.
	SigningKey []byte

	// Issuer, when set, must match the token's "iss" claim.
	Issuer string

	// Audience, when set, must appear in the token's "aud" claim.
	Audience string
}

type gatewayClaims struct {
	AccountID string `json:"acct,omitempty"`
	Plan      string `json:"plan,omitempty"`
	RateLimit int    `json:"rate_limit,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256 bearer tokens.
type JWTAuthenticator struct {
	config JWTConfig
	parser *jwt.Parser
}

var _ Authenticator = (*JWTAuthenticator)(nil)

func NewJWTAuthenticator(config JWTConfig) (*JWTAuthenticator, error) {
	if len(config.SigningKey) == 0 {
		return nil, fmt.Errorf("auth: JWTConfig.SigningKey is required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTAuthenticator{config: config, parser: jwt.NewParser(opts...)}, nil
}

func (a *JWTAuthenticator) Name() string { return "jwt" }

func (a *JWTAuthenticator) Supports(req *AuthRequest) bool {
	return extractBearer(req) != ""
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, req *AuthRequest) (*AuthResult, error) {
	raw := extractBearer(req)
	if raw == "" {
		return Failure(ErrMissingCredentials), nil
	}

	claims := &gatewayClaims{}
	token, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.config.SigningKey, nil
	})
	if err != nil {
		return Failure(classifyJWTError(err)), nil
	}
	if !token.Valid {
		return Failure(ErrInvalidCredentials), nil
	}

	id := &Identity{
		Principal: claims.Subject,
		AccountID: claims.AccountID,
		Plan:      claims.Plan,
		RateLimit: claims.RateLimit,
		Method:    MethodJWT,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if id.Principal == "" {
		return Failure(ErrInvalidCredentials), nil
	}
	return Success(id), nil
}

func extractBearer(req *AuthRequest) string {
	h := req.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrInvalidCredentials
	}
}

// IssueToken mints a token the authenticator will accept. The account
// front-end uses this when a caller exchanges credentials for a session.
func IssueToken(config JWTConfig, id *Identity, ttl time.Duration) (string, error) {
	if len(config.SigningKey) == 0 {
		return "", fmt.Errorf("auth: JWTConfig.SigningKey is required")
	}
	now := time.Now()
	claims := &gatewayClaims{
		AccountID: id.AccountID,
		Plan:      id.Plan,
		RateLimit: id.RateLimit,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Principal,
			Issuer:    config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{config.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.SigningKey)
}
