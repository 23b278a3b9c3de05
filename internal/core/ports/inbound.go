package ports

import (
	"context"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// DocumentProcessor is the inbound contract for translating one source file.
type DocumentProcessor interface {
	Process(ctx context.Context, req domain.ProcessRequest) domain.DocumentReport
}

// BatchRunner is the inbound contract for translating every file in a directory.
type BatchRunner interface {
	RunDirectory(ctx context.Context, dir string) (domain.BatchReport, error)
}
