package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/infrastructure/resilience"
)

func TestCompleteSendsConversation(t *testing.T) {
	var captured chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  译文  "}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", "deepseek-chat")
	got, err := client.Complete(context.Background(), domain.ChatRequest{
		Turns: []domain.Turn{
			{Role: domain.RoleSystem, Content: "sys"},
			{Role: domain.RoleUser, Content: "hello"},
		},
		Timeout:     time.Second,
		Temperature: 0.2,
		MaxTokens:   4000,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "译文" {
		t.Fatalf("unexpected content %q", got)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if captured.Model != "deepseek-chat" || captured.MaxTokens != 4000 || captured.Temperature != 0.2 {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient balance", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := New(server.URL, "k", "m")
	_, err := client.Complete(context.Background(), domain.ChatRequest{Turns: []domain.Turn{{Role: domain.RoleUser, Content: "x"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "insufficient balance") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("402 must not be temporary")
	}
}

func TestCompleteTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, "k", "m")
	_, err := client.Complete(context.Background(), domain.ChatRequest{
		Turns:   []domain.Turn{{Role: domain.RoleUser, Content: "x"}},
		Timeout: 20 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2,
	})
	client := New(server.URL, "k", "m", WithExecutor(executor), WithOperation("llm.metadata"))
	got, err := client.Complete(context.Background(), domain.ChatRequest{Turns: []domain.Turn{{Role: domain.RoleUser, Content: "x"}}})
	if err != nil || got != "ok" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCompleteRejectsEmptyConversation(t *testing.T) {
	client := New("http://unused", "k", "m")
	if _, err := client.Complete(context.Background(), domain.ChatRequest{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
