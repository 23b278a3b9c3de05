package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

type BatchUseCase struct {
	processor ports.DocumentProcessor
	sleeper   ports.Sleeper
	cooldown  time.Duration
}

func NewBatchUseCase(processor ports.DocumentProcessor, sleeper ports.Sleeper, cooldown time.Duration) *BatchUseCase {
	if cooldown < 0 {
		cooldown = 0
	}
	return &BatchUseCase{processor: processor, sleeper: sleeper, cooldown: cooldown}
}

// RunDirectory processes every PDF in dir, one after another, with a
// cooldown between documents. A failing document never stops the batch.
func (uc *BatchUseCase) RunDirectory(ctx context.Context, dir string) (domain.BatchReport, error) {
	files, err := ListSources(dir)
	if err != nil {
		return domain.BatchReport{}, err
	}
	if len(files) == 0 {
		slog.Warn("no_source_documents", "dir", dir)
		return domain.BatchReport{}, nil
	}

	var report domain.BatchReport
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		slog.Info("batch_progress", "document", i+1, "total", len(files), "path", path)
		report.Documents = append(report.Documents, uc.processor.Process(ctx, domain.ProcessRequest{Path: path}))

		if i < len(files)-1 && uc.cooldown > 0 && uc.sleeper != nil {
			if err := uc.sleeper.Sleep(ctx, uc.cooldown); err != nil {
				return report, err
			}
		}
	}

	slog.Info("batch_finished",
		"dir", dir,
		"documents", len(report.Documents),
		"completed", report.Count(domain.StatusCompleted),
		"incomplete", report.Count(domain.StatusIncomplete),
		"skipped", report.Count(domain.StatusSkipped),
	)
	return report, nil
}

// ListSources returns the .pdf files of dir (any extension case), sorted,
// ignoring AppleDouble "._" companions and subdirectories.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list source dir", fmt.Errorf("%s: %w", dir, err))
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "._") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
