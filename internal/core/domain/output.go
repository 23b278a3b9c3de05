package domain

type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
)

type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

type OutputDocument struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// TranslationResult is everything one document's translation session produced.
type TranslationResult struct {
	Chunks   []Chunk
	Glossary *Glossary
	Log      []TranslationLogEntry
}

func (r TranslationResult) Failed() int {
	n := 0
	for _, c := range r.Chunks {
		if c.Status == ChunkFailed {
			n++
		}
	}
	return n
}
