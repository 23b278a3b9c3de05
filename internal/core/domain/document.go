package domain

import "time"

type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkTranslated ChunkStatus = "translated"
	ChunkFailed     ChunkStatus = "failed"
)

// Chunk is one sentence-aligned slice of normalized text. Source slices are
// contiguous, so joining every Source of a document yields its normalized text.
type Chunk struct {
	Index       int         `json:"index"`
	Source      string      `json:"source"`
	Status      ChunkStatus `json:"status"`
	Translation string      `json:"translation,omitempty"`
}

type Document struct {
	ID             string    `json:"id"`
	SourcePath     string    `json:"source_path"`
	Title          string    `json:"title"`
	BaseName       string    `json:"base_name"`
	RawText        string    `json:"-"`
	NormalizedText string    `json:"-"`
	Chunks         []Chunk   `json:"chunks"`
	CreatedAt      time.Time `json:"created_at"`
}

// Metadata is what the metadata call derives from the head of a paper.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
}

type DocumentStatus string

const (
	StatusCompleted  DocumentStatus = "completed"
	StatusIncomplete DocumentStatus = "incomplete"
	StatusSkipped    DocumentStatus = "skipped"
)

type DocumentReport struct {
	DocumentID   string         `json:"document_id"`
	SourcePath   string         `json:"source_path"`
	BaseName     string         `json:"base_name,omitempty"`
	Status       DocumentStatus `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	Chunks       int            `json:"chunks"`
	FailedChunks int            `json:"failed_chunks"`
	Terms        int            `json:"terms"`
	Artifacts    []string       `json:"artifacts,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

type BatchReport struct {
	Documents []DocumentReport `json:"documents"`
}

func (r BatchReport) Count(status DocumentStatus) int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == status {
			n++
		}
	}
	return n
}

// ProcessRequest names one source file; Title overrides the derived title when set.
type ProcessRequest struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}
