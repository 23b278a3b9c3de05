package pdfreader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

func TestJoinPagesAddsMarkers(t *testing.T) {
	got := JoinPages([]string{"first\n", "", "third"})
	want := "--- Page 1 ---\nfirst\n\n--- Page 2 ---\n\n\n--- Page 3 ---\nthird\n\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}
