package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

func TestCompletePostsChatMessages(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"集体无意识"}}`))
	}))
	defer server.Close()

	client := New(server.URL, "qwen2.5", nil, "")
	got, err := client.Complete(context.Background(), domain.ChatRequest{
		Turns:     []domain.Turn{{Role: domain.RoleSystem, Content: "sys"}, {Role: domain.RoleUser, Content: "collective unconscious"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "集体无意识" {
		t.Fatalf("unexpected content %q", got)
	}
	if payload["stream"] != false || payload["model"] != "qwen2.5" {
		t.Fatalf("unexpected payload %v", payload)
	}
	messages, _ := payload["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", payload["messages"])
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "m", nil, "")
	_, err := client.Complete(context.Background(), domain.ChatRequest{Turns: []domain.Turn{{Role: domain.RoleUser, Content: "x"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("502 should be temporary, got %v", err)
	}
}
