package usecase

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

const maxBaseNameRunes = 250

var (
	authorSeparatorRe = regexp.MustCompile(`(?i),\s*|\s+and\s+|·`)
	illegalFileRe     = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// BaseName derives the artifact name of a document:
// "LastName[ et al.] (year) title". Without metadata the source stem is used.
func BaseName(md domain.Metadata, sourcePath string) string {
	stem := SourceStem(sourcePath)
	if md == (domain.Metadata{}) {
		return SanitizeFileName(stem)
	}
	year := strings.TrimSpace(md.Year)
	if year == "" {
		year = "__"
	}
	title := strings.TrimSpace(md.Title)
	if title == "" {
		title = stem
	}
	return SanitizeFileName(fmt.Sprintf("%s (%s) %s", AuthorPart(md.Author), year, title))
}

// AuthorPart returns the first author's last name, with "et al." when more
// authors follow.
func AuthorPart(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "__"
	}
	authors := authorSeparatorRe.Split(author, -1)
	first := strings.TrimSpace(authors[0])
	last := first
	if parts := strings.Fields(first); len(parts) > 0 {
		last = parts[len(parts)-1]
	}
	if len(authors) > 1 {
		return last + " et al."
	}
	return last
}

// SanitizeFileName replaces reserved characters, collapses whitespace and
// caps the name, cutting back to the last space when it had to shorten.
// Applying it twice changes nothing.
func SanitizeFileName(name string) string {
	name = illegalFileRe.ReplaceAllString(name, "_")
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) > maxBaseNameRunes {
		name = string([]rune(name)[:maxBaseNameRunes])
		if cut := strings.LastIndex(name, " "); cut > 0 {
			name = name[:cut]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "document"
	}
	return name
}

func SourceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
