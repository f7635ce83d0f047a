// Package auth verifies caller credentials before a request reaches the
// gateway pipeline.
//
// Keys and tokens are issued by the account front-end, so only two schemes
// are supported: opaque API keys looked up through a KeyStore, and HMAC
// signed JWTs minted with the gateway's own signing key. Both produce an
// Identity that travels on the request context for the rest of the call.
package auth
