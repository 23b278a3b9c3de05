package ports

import (
	"context"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// TextExtractor returns page-concatenated raw text for a source file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Normalizer cleans raw extracted text.
type Normalizer interface {
	Normalize(raw string) string
}

// Chunker splits normalized text into ordered, size-bounded chunks.
type Chunker interface {
	Split(text string) []domain.Chunk
}

// ChatCompleter sends one windowed conversation to the text-generation service.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}

// MetadataExtractor derives title/author/year from the head of a document.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, head string) (domain.Metadata, error)
}

// TermExtractor harvests term/gloss pairs from translated text into a glossary.
type TermExtractor interface {
	Harvest(glossary *domain.Glossary, translated string, chunk int) []domain.TerminologyEntry
}

// DocumentAssembler rebuilds translated chunks into tagged blocks.
type DocumentAssembler interface {
	Assemble(title string, chunks []domain.Chunk) domain.OutputDocument
}

// ArtifactStore writes output artifacts, overwriting earlier runs.
type ArtifactStore interface {
	WriteText(ctx context.Context, key, content string) (string, error)
	WriteJSON(ctx context.Context, key string, v any) (string, error)
}

// AuditWorkbook writes an optional spreadsheet view of a document run.
type AuditWorkbook interface {
	Write(ctx context.Context, key string, log []domain.TranslationLogEntry, glossary *domain.Glossary) (string, error)
}

// RunRecorder persists an audit trail of document outcomes and chunk log rows.
type RunRecorder interface {
	RecordChunk(ctx context.Context, documentID string, entry domain.TranslationLogEntry) error
	RecordDocument(ctx context.Context, report domain.DocumentReport) error
}

// Sleeper blocks for pacing and cooldowns; it returns early with ctx.Err().
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TranslationMetrics observes chunk and document outcomes.
type TranslationMetrics interface {
	ObserveChunk(outcome domain.ChunkOutcome, duration time.Duration)
	StartDocument()
	FinishDocument(status domain.DocumentStatus, duration time.Duration)
}

// ResultPublisher announces finished documents to other services.
type ResultPublisher interface {
	PublishDocumentTranslated(ctx context.Context, report domain.DocumentReport) error
}

// DocumentRenderer lays out an assembled document in one output format.
type DocumentRenderer interface {
	Render(doc domain.OutputDocument, chunks []domain.Chunk) (string, error)
	Extension() string
}
