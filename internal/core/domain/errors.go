package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrTemporary         = errors.New("temporary failure")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrToolUnavailable   = errors.New("extraction tool unavailable")
	ErrEmptyDocument     = errors.New("normalized text is empty")
	ErrTranslationCall   = errors.New("translation call failed")
	ErrMetadataParse     = errors.New("metadata parse failed")
	ErrOutputWrite       = errors.New("output write failed")
	ErrMissingCredential = errors.New("missing credential")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
