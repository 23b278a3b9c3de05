package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// RunRepository is the append-only audit trail of translation runs. It is
// never read back to resume work.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across translator and worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS translation_documents (
	id TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	base_name TEXT,
	status TEXT NOT NULL,
	reason TEXT,
	chunks INTEGER NOT NULL DEFAULT 0,
	failed_chunks INTEGER NOT NULL DEFAULT 0,
	terms INTEGER NOT NULL DEFAULT 0,
	artifacts JSONB NOT NULL DEFAULT '[]'::jsonb,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS translation_chunks (
	document_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	source_length INTEGER NOT NULL,
	output_length INTEGER NOT NULL,
	error_message TEXT,
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_translation_documents_status ON translation_documents(status);
CREATE INDEX IF NOT EXISTS idx_translation_documents_started_at ON translation_documents(started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) RecordChunk(ctx context.Context, documentID string, entry domain.TranslationLogEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO translation_chunks (
	document_id, chunk_index, outcome, source_length, output_length, error_message, recorded_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (document_id, chunk_index) DO UPDATE SET
	outcome = EXCLUDED.outcome,
	source_length = EXCLUDED.source_length,
	output_length = EXCLUDED.output_length,
	error_message = EXCLUDED.error_message,
	recorded_at = EXCLUDED.recorded_at
`,
		documentID, entry.ChunkIndex, string(entry.Outcome), entry.SourceLength, entry.OutputLength, entry.Error, ts,
	)
	if err != nil {
		return fmt.Errorf("insert translation chunk: %w", err)
	}
	return nil
}

func (r *RunRepository) RecordDocument(ctx context.Context, report domain.DocumentReport) error {
	artifacts := report.Artifacts
	if artifacts == nil {
		artifacts = []string{}
	}
	artifactsJSON, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO translation_documents (
	id, source_path, base_name, status, reason, chunks, failed_chunks, terms, artifacts, started_at, finished_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
	base_name = EXCLUDED.base_name,
	status = EXCLUDED.status,
	reason = EXCLUDED.reason,
	chunks = EXCLUDED.chunks,
	failed_chunks = EXCLUDED.failed_chunks,
	terms = EXCLUDED.terms,
	artifacts = EXCLUDED.artifacts,
	finished_at = EXCLUDED.finished_at
`,
		report.DocumentID, report.SourcePath, report.BaseName, string(report.Status), report.Reason,
		report.Chunks, report.FailedChunks, report.Terms, artifactsJSON, report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert translation document: %w", err)
	}
	return nil
}
