package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type fakePDF struct{ calls int }

func (f *fakePDF) Extract(context.Context, string) (string, error) {
	f.calls++
	return "from pdf", nil
}

func TestExtractReadsTextFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.TXT")
	if err := os.WriteFile(path, []byte("Archetypes and the collective unconscious."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	pdf := &fakePDF{}
	got, err := NewExtractor(pdf).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Archetypes and the collective unconscious." || pdf.calls != 0 {
		t.Fatalf("unexpected result %q (pdf calls %d)", got, pdf.calls)
	}
}

func TestExtractDelegatesPDF(t *testing.T) {
	pdf := &fakePDF{}
	got, err := NewExtractor(pdf).Extract(context.Background(), "paper.pdf")
	if err != nil || got != "from pdf" || pdf.calls != 1 {
		t.Fatalf("unexpected delegation: %q %v %d", got, err, pdf.calls)
	}
}

func TestExtractRejectsBinaryText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}
