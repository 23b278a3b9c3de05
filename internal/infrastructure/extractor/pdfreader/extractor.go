package pdfreader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// Extractor reads PDF text in-process. Pages are joined with
// "--- Page N ---" marker lines that the normalizer strips.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionFailed, "open pdf", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(n)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtractionFailed, fmt.Sprintf("read pdf page %d", n), err)
		}
		pages = append(pages, content)
	}
	return JoinPages(pages), nil
}

func JoinPages(pages []string) string {
	var b strings.Builder
	for i, content := range pages {
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(strings.TrimRight(content, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}
