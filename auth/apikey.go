package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// HeaderName is the header the key is read from. Defaults to "X-API-Key".
	HeaderName string

	// Store resolves key hashes to issued keys. Required.
	Store KeyStore
}

// KeyInfo describes an API key issued by the account front-end. Keys are
// stored hashed; the plaintext exists only in the caller's hands.
type KeyInfo struct {
	ID        string
	KeyHash   string
	Principal string
	AccountID string
	Plan      string
	RateLimit int
	Revoked   bool
	ExpiresAt time.Time
}

// KeyStore looks up issued keys by hash.
type KeyStore interface {
	Lookup(ctx context.Context, keyHash string) (*KeyInfo, error)
}

// MemoryKeyStore is a KeyStore backed by a map, loaded with keys the
// front-end has issued. Safe for concurrent use.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*KeyInfo
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]*KeyInfo)}
}

// Add registers an issued key by its plaintext value.
func (s *MemoryKeyStore) Add(plaintext string, info *KeyInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *info
	cp.KeyHash = HashKey(plaintext)
	s.keys[cp.KeyHash] = &cp
}

// Revoke marks the key with the given id revoked.
func (s *MemoryKeyStore) Revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.ID == id {
			k.Revoked = true
		}
	}
}

func (s *MemoryKeyStore) Lookup(_ context.Context, keyHash string) (*KeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.keys[keyHash]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	cp := *info
	return &cp, nil
}

// HashKey returns the hex SHA-256 digest under which a key is stored.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuthenticator validates opaque keys against a KeyStore.
type APIKeyAuthenticator struct {
	header string
	store  KeyStore
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)

func NewAPIKeyAuthenticator(config APIKeyConfig) (*APIKeyAuthenticator, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("auth: APIKeyConfig.Store is required")
	}
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	return &APIKeyAuthenticator{header: config.HeaderName, store: config.Store}, nil
}

func (a *APIKeyAuthenticator) Name() string { return "apikey" }

func (a *APIKeyAuthenticator) Supports(req *AuthRequest) bool {
	return strings.TrimSpace(req.GetHeader(a.header)) != ""
}

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	key := strings.TrimSpace(req.GetHeader(a.header))
	if key == "" {
		return Failure(ErrMissingCredentials), nil
	}

	info, err := a.store.Lookup(ctx, HashKey(key))
	if err != nil {
		return Failure(ErrInvalidCredentials), nil
	}
	if info.Revoked {
		return Failure(ErrKeyRevoked), nil
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return Failure(ErrTokenExpired), nil
	}

	return Success(&Identity{
		Principal: info.Principal,
		AccountID: info.AccountID,
		Plan:      info.Plan,
		RateLimit: info.RateLimit,
		Method:    MethodAPIKey,
		ExpiresAt: info.ExpiresAt,
	}), nil
}
