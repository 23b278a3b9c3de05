package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

// Extractor reads .txt and .md sources directly and hands every other file
// to the PDF extractor.
type Extractor struct {
	pdf ports.TextExtractor
}

func NewExtractor(pdf ports.TextExtractor) *Extractor {
	return &Extractor{pdf: pdf}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
	default:
		if e.pdf == nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract", fmt.Errorf("unsupported file type: %s", filepath.Base(path)))
		}
		return e.pdf.Extract(ctx, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionFailed, "read source document", err)
	}
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrExtractionFailed, "read source document", fmt.Errorf("not utf-8 text: %s", filepath.Base(path)))
	}
	return string(raw), nil
}
