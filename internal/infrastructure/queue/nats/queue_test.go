package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

func TestDecodeJob(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.ProcessRequest
		wantErr bool
	}{
		{name: "bare path", data: " source/Jung.pdf\n", want: domain.ProcessRequest{Path: "source/Jung.pdf"}},
		{name: "json", data: `{"path":"a.pdf","title":"Aion"}`, want: domain.ProcessRequest{Path: "a.pdf", Title: "Aion"}},
		{name: "json without path", data: `{"title":"Aion"}`, wantErr: true},
		{name: "broken json", data: `{"path":`, wantErr: true},
		{name: "empty", data: "  ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeJob([]byte(tc.data))
			if tc.wantErr {
				if !domain.IsKind(err, domain.ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("DecodeJob() = %+v, %v", got, err)
			}
		})
	}
}

func TestWrapTemporary(t *testing.T) {
	err := wrapTemporary("nats publish papers.translate", fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("closed connection should be temporary, got %v", err)
	}
	err = wrapTemporary("nats publish papers.translate", errors.New("nats: maximum payload exceeded"))
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("payload errors must stay permanent")
	}
	if wrapTemporary("op", nil) != nil {
		t.Fatalf("nil stays nil")
	}
}

func TestClassifyNATSError(t *testing.T) {
	if class := classifyNATSError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancel must neither retry nor trip the breaker, got %+v", class)
	}
	if !classifyNATSError(fmt.Errorf("publish: %w", nats.ErrNoResponders)).Retryable {
		t.Fatalf("no responders should retry")
	}
	if class := classifyNATSError(errors.New("bad subject")); class.Retryable || !class.RecordFailure {
		t.Fatalf("unknown errors are permanent failures, got %+v", class)
	}
}
