package localfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// Storage writes artifacts below a base directory. Every write goes to a
// temp file that is renamed over the target, so earlier runs are replaced
// whole.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./output"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrOutputWrite, "create output dir", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) BasePath() string { return s.basePath }

func (s *Storage) Save(_ context.Context, key string, data io.Reader) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "create artifact dir", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", domain.WrapError(domain.ErrOutputWrite, "write "+key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "close "+key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "chmod "+key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "rename "+key, err)
	}
	return path, nil
}

func (s *Storage) WriteText(ctx context.Context, key, content string) (string, error) {
	return s.Save(ctx, key, strings.NewReader(content))
}

// WriteJSON writes v as indented JSON without HTML escaping, so CJK text and
// brackets stay readable.
func (s *Storage) WriteJSON(ctx context.Context, key string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "encode "+key, err)
	}
	return s.Save(ctx, key, &buf)
}

func (s *Storage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve artifact key", fmt.Errorf("invalid key %q", key))
	}
	return filepath.Join(s.basePath, clean), nil
}
