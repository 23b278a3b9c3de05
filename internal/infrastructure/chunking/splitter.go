package chunking

import (
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type Splitter struct {
	ChunkSize int
}

func NewSplitter(chunkSize int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	return &Splitter{ChunkSize: chunkSize}
}

// Split packs sentences greedily into chunks of at most ChunkSize runes.
// Chunks are contiguous slices of text: joining their Source fields gives
// back text unchanged. A sentence longer than ChunkSize is cut at rune
// boundaries and its remainder keeps packing. A piece that would be only
// whitespace joins its neighbour, which may then exceed ChunkSize by that
// whitespace.
func (s *Splitter) Split(text string) []domain.Chunk {
	if isBlank(text) {
		return nil
	}

	var (
		out      []domain.Chunk
		current  []byte
		curRunes int
	)
	emit := func(src string) {
		out = append(out, domain.Chunk{Index: len(out), Source: src, Status: domain.ChunkPending})
	}
	closeCurrent := func() {
		if len(current) > 0 {
			emit(string(current))
			current = current[:0]
			curRunes = 0
		}
	}

	for _, unit := range Sentences(text) {
		n := utf8.RuneCountInString(unit)
		if curRunes+n <= s.ChunkSize {
			current = append(current, unit...)
			curRunes += n
			continue
		}
		closeCurrent()
		for n > s.ChunkSize {
			head, tail := cutRunes(unit, s.ChunkSize)
			emit(head)
			unit = tail
			n -= s.ChunkSize
		}
		current = append(current, unit...)
		curRunes = n
	}
	closeCurrent()
	return mergeBlank(out)
}

// mergeBlank folds whitespace-only pieces into the preceding chunk, or the
// following one when nothing precedes them, and renumbers.
func mergeBlank(chunks []domain.Chunk) []domain.Chunk {
	out := chunks[:0]
	pending := ""
	for _, c := range chunks {
		if isBlank(c.Source) {
			if len(out) > 0 {
				out[len(out)-1].Source += c.Source
			} else {
				pending += c.Source
			}
			continue
		}
		c.Source = pending + c.Source
		pending = ""
		c.Index = len(out)
		out = append(out, c)
	}
	return out
}

// Sentences splits text after terminal punctuation. Latin terminators need
// trailing whitespace; CJK terminators do not. Whitespace following a
// terminator stays with the sentence it ends.
func Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		end := -1
		switch r {
		case '.', '!', '?':
			if i < len(text) {
				next, _ := utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(next) {
					end = skipSpace(text, i)
				}
			}
		case '。', '！', '？':
			end = skipSpace(text, i)
		}
		if end > 0 {
			out = append(out, text[start:end])
			start = end
			i = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func cutRunes(s string, n int) (string, string) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], s[i:]
		}
		count++
	}
	return s, ""
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
