package auth

import "errors"

var (
	// ErrMissingCredentials indicates the request carried no credential at all.
	ErrMissingCredentials = errors.New("auth: missing credentials")

	// ErrInvalidCredentials indicates the credential was present but did not
	// match any issued key or verify against the signing key.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenExpired indicates the credential was valid once but has expired.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenMalformed indicates the credential could not be parsed.
	ErrTokenMalformed = errors.New("auth: token malformed")

	// ErrKeyRevoked indicates an API key that was explicitly revoked.
	ErrKeyRevoked = errors.New("auth: key revoked")
)
