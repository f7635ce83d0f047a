package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Format(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key("search_opinions", map[string]any{"query": "habeas corpus", "court": "scotus"})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	want := `search_opinions::{"court":"scotus","query":"habeas corpus"}`
	if key != want {
		t.Errorf("Key() = %q, want %q", key, want)
	}
}

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	// Maps with the same content must produce identical keys regardless of
	// iteration order.
	params1 := map[string]any{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	params2 := map[string]any{"e": 5, "d": 4, "c": 3, "b": 2, "a": 1}

	for i := 0; i < 20; i++ {
		key1, err := k.Key("op", params1)
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		key2, err := k.Key("op", params2)
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		if key1 != key2 {
			t.Fatalf("Key() not deterministic: %q != %q", key1, key2)
		}
	}
}

func TestDefaultKeyer_EmptyValuesExcluded(t *testing.T) {
	k := NewDefaultKeyer()

	key1, _ := k.Key("op", map[string]any{"query": "tort", "court": "", "judge": nil})
	key2, _ := k.Key("op", map[string]any{"query": "tort"})

	if key1 != key2 {
		t.Errorf("empty params not excluded: %q != %q", key1, key2)
	}
}

func TestDefaultKeyer_NilParams(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key("op", nil)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key != "op::{}" {
		t.Errorf("Key() = %q, want op::{}", key)
	}
}

func TestDefaultKeyer_NestedParams(t *testing.T) {
	k := NewDefaultKeyer()

	key1, err := k.Key("op", map[string]any{
		"filters": map[string]any{"year": 2020, "court": "ca9"},
		"fields":  []any{"id", "name"},
	})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	key2, err := k.Key("op", map[string]any{
		"fields":  []any{"id", "name"},
		"filters": map[string]any{"court": "ca9", "year": 2020},
	})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key1 != key2 {
		t.Errorf("nested params not canonical: %q != %q", key1, key2)
	}
}

func TestDefaultKeyer_EmptyOperation(t *testing.T) {
	k := NewDefaultKeyer()

	if _, err := k.Key("", map[string]any{"a": 1}); err != ErrInvalidKey {
		t.Errorf("Key() error = %v, want ErrInvalidKey", err)
	}
}

func TestDefaultKeyer_LongParamsHashed(t *testing.T) {
	k := NewDefaultKeyer()

	params := map[string]any{"blob": strings.Repeat("x", 2*MaxKeyLength)}
	key, err := k.Key("op", params)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if len(key) > MaxKeyLength {
		t.Errorf("len(key) = %d, want <= %d", len(key), MaxKeyLength)
	}
	if !strings.HasPrefix(key, "op::") {
		t.Errorf("Key() = %q, want op:: prefix", key)
	}

	// Still deterministic after hashing
	key2, _ := k.Key("op", params)
	if key != key2 {
		t.Errorf("hashed key not deterministic: %q != %q", key, key2)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", "op::{}", nil},
		{"empty", "", ErrInvalidKey},
		{"whitespace", "   ", ErrInvalidKey},
		{"newline", "a\nb", ErrInvalidKey},
		{"carriage return", "a\rb", ErrInvalidKey},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); err != tt.wantErr {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
