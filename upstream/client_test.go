package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCallSearch(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 2, "results": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: "u-token"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	raw, err := client.Call(context.Background(), "search_opinions", map[string]any{
		"q":     "habeas corpus",
		"court": "scotus",
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if gotPath != "/api/rest/v4/search/" {
		t.Errorf("path = %q, want %q", gotPath, "/api/rest/v4/search/")
	}
	if gotAuth != "Token u-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Token u-token")
	}
	if gotQuery != "court=scotus&q=habeas+corpus" {
		t.Errorf("query = %q, want %q", gotQuery, "court=scotus&q=habeas+corpus")
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

func TestCallIDAsPathSegment(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": 12345}`))
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.Call(context.Background(), "get_opinion", map[string]any{"id": 12345}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gotPath != "/api/rest/v4/opinions/12345/" {
		t.Errorf("path = %q, want %q", gotPath, "/api/rest/v4/opinions/12345/")
	}
}

func TestCallUnknownOperation(t *testing.T) {
	client, _ := NewClient(Config{BaseURL: "http://localhost"})
	_, err := client.Call(context.Background(), "drop_tables", nil)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Call() error = %v, want ErrUnknownOperation", err)
	}
}

func TestCallClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Call(context.Background(), "get_docket", map[string]any{"id": 404})

	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("Call() error = %v, want *Error", err)
	}
	if ue.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", ue.Status)
	}
	if ue.Message != "Not found." {
		t.Errorf("Message = %q, want %q", ue.Message, "Not found.")
	}
	if ue.Retryable() {
		t.Error("Retryable() = true for 404, want false")
	}
}

func TestCallServerErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Call(context.Background(), "search_opinions", nil)

	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("Call() error = %v, want *Error", err)
	}
	if !ue.Retryable() {
		t.Error("Retryable() = false for 502, want true")
	}
}

func TestCallNetworkErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	client, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Call(context.Background(), "search_opinions", nil)
	if err == nil {
		t.Fatal("Call() error = nil, want transport error")
	}
	if !IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
}

func TestCallContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, _ := NewClient(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Call(ctx, "search_opinions", nil)
	if err == nil {
		t.Fatal("Call() error = nil, want deadline error")
	}
	if !IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
}

func TestIsRetryableNil(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("IsRetryable(nil) = true, want false")
	}
	if IsRetryable(errors.New("unclassified")) {
		t.Error("IsRetryable(plain error) = true, want false")
	}
}

func TestOperations(t *testing.T) {
	ops := Operations()
	if len(ops) != len(endpoints) {
		t.Fatalf("Operations() returned %d ops, want %d", len(ops), len(endpoints))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1] >= ops[i] {
			t.Errorf("Operations() not sorted: %q before %q", ops[i-1], ops[i])
		}
	}
}
