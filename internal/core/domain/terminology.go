package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type TerminologyEntry struct {
	Term       string `json:"term"`
	Gloss      string `json:"gloss"`
	FirstChunk int    `json:"first_chunk"`
}

// Glossary is an additive term map. The first gloss recorded for a term wins.
type Glossary struct {
	index   map[string]int
	entries []TerminologyEntry
}

func NewGlossary() *Glossary {
	return &Glossary{index: make(map[string]int)}
}

// Add records term unless it is already known and reports whether it was new.
func (g *Glossary) Add(term, gloss string, chunk int) bool {
	if term == "" || gloss == "" {
		return false
	}
	if _, ok := g.index[term]; ok {
		return false
	}
	g.index[term] = len(g.entries)
	g.entries = append(g.entries, TerminologyEntry{Term: term, Gloss: gloss, FirstChunk: chunk})
	return true
}

func (g *Glossary) Lookup(term string) (string, bool) {
	i, ok := g.index[term]
	if !ok {
		return "", false
	}
	return g.entries[i].Gloss, true
}

func (g *Glossary) Len() int { return len(g.entries) }

// Entries returns entries in first-seen order.
func (g *Glossary) Entries() []TerminologyEntry {
	out := make([]TerminologyEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// MarshalJSON writes a {"term": "gloss"} object in first-seen order.
func (g *Glossary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range g.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(e.Term)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(e.Gloss)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type ChunkOutcome string

const (
	OutcomeTranslated ChunkOutcome = "translated"
	OutcomeFailed     ChunkOutcome = "failed"
)

type TranslationLogEntry struct {
	ChunkIndex   int          `json:"chunk_index"`
	SourceLength int          `json:"source_length"`
	OutputLength int          `json:"output_length"`
	Timestamp    time.Time    `json:"timestamp"`
	Outcome      ChunkOutcome `json:"outcome"`
	Error        string       `json:"error,omitempty"`
}
