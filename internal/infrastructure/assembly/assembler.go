package assembly

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

const terminalPunctuation = ".!?。！？…"

// Assembler rebuilds translated chunks into heading and paragraph blocks.
// Short declarative sentences without a terminator are read as headings;
// nothing corrects that afterwards.
type Assembler struct {
	HeadingMaxLen int
}

func NewAssembler(headingMaxLen int) *Assembler {
	if headingMaxLen <= 0 {
		headingMaxLen = 50
	}
	return &Assembler{HeadingMaxLen: headingMaxLen}
}

func (a *Assembler) Assemble(title string, chunks []domain.Chunk) domain.OutputDocument {
	doc := domain.OutputDocument{Title: title}
	for _, chunk := range chunks {
		for _, unit := range Units(chunk.Translation) {
			doc.Blocks = append(doc.Blocks, domain.Block{Kind: a.Classify(unit), Text: unit})
		}
	}
	return doc
}

func (a *Assembler) Classify(unit string) domain.BlockKind {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return domain.BlockParagraph
	}
	if utf8.RuneCountInString(unit) >= a.HeadingMaxLen {
		return domain.BlockParagraph
	}
	last, _ := utf8.DecodeLastRuneInString(unit)
	if strings.ContainsRune(terminalPunctuation, last) {
		return domain.BlockParagraph
	}
	return domain.BlockHeading
}

// Units splits translated text into trimmed, non-empty lines.
func Units(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
