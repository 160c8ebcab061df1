package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "AutoQuote <no-reply@autoquote.example>")
	err := client.Send(context.Background(), []string{"buyer@example.com"}, "Hello", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if got.From != "AutoQuote <no-reply@autoquote.example>" || len(got.To) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClientSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "bad-from")
	err := client.Send(context.Background(), []string{"buyer@example.com"}, "Hello", "<p>Hi</p>")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
