package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Keyer generates deterministic cache keys from an operation name and its
// parameters.
//
// Contract:
//   - Determinism: same inputs must produce the same key, regardless of map
//     iteration order.
//   - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for an operation invocation.
	Key(operation string, params map[string]any) (string, error)
}

// DefaultKeyer generates keys of the form <operation>::<canonical params>.
// Two invocations with the same parameter set collide regardless of the
// order the parameters were supplied in.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key. Absent, nil, and empty-string
// parameter values are excluded before key construction. Parameter sets too
// large to embed verbatim are hashed instead.
func (k *DefaultKeyer) Key(operation string, params map[string]any) (string, error) {
	if operation == "" {
		return "", ErrInvalidKey
	}

	pruned := make(map[string]any, len(params))
	for name, value := range params {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		pruned[name] = value
	}

	canonical, err := canonicalize(pruned)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
	}

	key := operation + "::" + string(canonical)
	if len(key) > MaxKeyLength {
		// Fall back to a digest of the canonical form
		hash := sha256.Sum256(canonical)
		key = operation + "::" + hex.EncodeToString(hash[:])
	}

	return key, nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
