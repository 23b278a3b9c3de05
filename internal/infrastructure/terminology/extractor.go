package terminology

import (
	"regexp"
	"strings"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

var (
	// "原型" (archetype), 「阴影」（Shadow）, 《红书》(The Red Book)
	quotedTermRe = regexp.MustCompile(`[「『《"“]([^」』》"”\n]+)[」』》"”]\s*[（(]([^）)\n]+)[）)]`)
	// Collective Unconscious（集体无意识）
	capitalizedTermRe = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*[（(]([^）)\n]+)[）)]`)
)

// Extractor harvests term/gloss pairs from translated text. The result is
// an audit artifact only and is never fed back into prompts.
type Extractor struct {
	patterns []*regexp.Regexp
}

func NewExtractor() *Extractor {
	return &Extractor{patterns: []*regexp.Regexp{quotedTermRe, capitalizedTermRe}}
}

// Harvest adds unseen terms to glossary and returns the entries it added.
func (e *Extractor) Harvest(glossary *domain.Glossary, translated string, chunk int) []domain.TerminologyEntry {
	if glossary == nil || translated == "" {
		return nil
	}
	var added []domain.TerminologyEntry
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatch(translated, -1) {
			term := strings.TrimSpace(m[1])
			gloss := strings.TrimSpace(m[2])
			if glossary.Add(term, gloss, chunk) {
				added = append(added, domain.TerminologyEntry{Term: term, Gloss: gloss, FirstChunk: chunk})
			}
		}
	}
	return added
}
