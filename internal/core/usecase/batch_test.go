package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type processorFake struct {
	paths []string
}

func (f *processorFake) Process(_ context.Context, req domain.ProcessRequest) domain.DocumentReport {
	f.paths = append(f.paths, req.Path)
	status := domain.StatusCompleted
	if filepath.Base(req.Path) == "b.pdf" {
		status = domain.StatusSkipped
	}
	return domain.DocumentReport{SourcePath: req.Path, Status: status}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestListSourcesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.pdf", "A.PDF", "._c.pdf", "notes.txt", "b.Pdf")
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := ListSources(dir)
	if err != nil {
		t.Fatalf("ListSources() error = %v", err)
	}
	want := []string{filepath.Join(dir, "A.PDF"), filepath.Join(dir, "b.Pdf"), filepath.Join(dir, "c.pdf")}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestRunDirectoryContinuesPastSkippedDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "c.pdf")
	processor := &processorFake{}
	sleeper := &sleeperFake{}

	report, err := NewBatchUseCase(processor, sleeper, 10*time.Second).RunDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("RunDirectory() error = %v", err)
	}
	if len(processor.paths) != 3 || len(report.Documents) != 3 {
		t.Fatalf("expected all 3 documents processed, got %v", processor.paths)
	}
	if report.Count(domain.StatusSkipped) != 1 || report.Count(domain.StatusCompleted) != 2 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(sleeper.slept) != 2 || sleeper.slept[0] != 10*time.Second {
		t.Fatalf("expected a cooldown between documents only, got %v", sleeper.slept)
	}
}

func TestRunDirectoryEmptyAndMissing(t *testing.T) {
	uc := NewBatchUseCase(&processorFake{}, &sleeperFake{}, time.Second)

	report, err := uc.RunDirectory(context.Background(), t.TempDir())
	if err != nil || len(report.Documents) != 0 {
		t.Fatalf("empty dir: %+v, %v", report, err)
	}

	_, err = uc.RunDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing dir, got %v", err)
	}
}

func TestRunDirectoryStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := &processorFake{}
	_, err := NewBatchUseCase(processor, &sleeperFake{}, 0).RunDirectory(ctx, dir)
	if err == nil || len(processor.paths) != 0 {
		t.Fatalf("expected cancellation before any document, got %v / %v", err, processor.paths)
	}
}
