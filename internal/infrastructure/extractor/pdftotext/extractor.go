package pdftotext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

const DefaultBinary = "pdftotext"

// Extractor runs poppler's pdftotext in layout mode and reads UTF-8 text
// from its stdout.
type Extractor struct {
	binary string
}

func NewExtractor(binary string) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Extractor{binary: binary}
}

// Available reports whether the binary can be found on PATH.
func (e *Extractor) Available() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return domain.WrapError(domain.ErrToolUnavailable, "lookup "+e.binary, err)
	}
	return nil
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", domain.WrapError(domain.ErrToolUnavailable, "run "+e.binary, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", domain.WrapError(domain.ErrExtractionFailed, "pdftotext "+path, err)
	}
	return stdout.String(), nil
}
