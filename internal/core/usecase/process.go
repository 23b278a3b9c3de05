package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

// ProcessDependencies wires one document pipeline. Metadata, Workbook,
// Recorder, Metrics and Publisher are optional.
type ProcessDependencies struct {
	Extractor  ports.TextExtractor
	Normalizer ports.Normalizer
	Chunker    ports.Chunker
	Metadata   ports.MetadataExtractor
	Translator *Translator
	Assembler  ports.DocumentAssembler
	Renderer   ports.DocumentRenderer
	Store      ports.ArtifactStore
	Workbook   ports.AuditWorkbook
	Recorder   ports.RunRecorder
	Metrics    ports.TranslationMetrics
	Publisher  ports.ResultPublisher
}

type ProcessDocumentUseCase struct {
	deps  ProcessDependencies
	newID func() string
	now   func() time.Time
}

func NewProcessDocumentUseCase(deps ProcessDependencies) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		deps:  deps,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Process translates one source file and writes its artifacts. It never
// returns an error: every problem ends up in the report.
func (uc *ProcessDocumentUseCase) Process(ctx context.Context, req domain.ProcessRequest) domain.DocumentReport {
	report := domain.DocumentReport{
		DocumentID: uc.newID(),
		SourcePath: req.Path,
		StartedAt:  uc.now(),
	}
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.StartDocument()
	}
	slog.Info("document_started", "document_id", report.DocumentID, "path", req.Path)

	uc.run(ctx, req, &report)

	report.FinishedAt = uc.now()
	uc.finish(ctx, report)
	return report
}

func (uc *ProcessDocumentUseCase) run(ctx context.Context, req domain.ProcessRequest, report *domain.DocumentReport) {
	raw, err := uc.deps.Extractor.Extract(ctx, req.Path)
	if err != nil {
		uc.skip(report, fmt.Errorf("extract text: %w", err))
		return
	}
	if strings.TrimSpace(raw) == "" {
		uc.skip(report, domain.WrapError(domain.ErrExtractionFailed, "extract text", errors.New("no text extracted")))
		return
	}

	normalized := uc.deps.Normalizer.Normalize(raw)
	if strings.TrimSpace(normalized) == "" {
		uc.skip(report, domain.WrapError(domain.ErrEmptyDocument, "normalize text", errors.New("nothing left after cleaning")))
		return
	}
	chunks := uc.deps.Chunker.Split(normalized)
	if len(chunks) == 0 {
		uc.skip(report, domain.WrapError(domain.ErrEmptyDocument, "segment text", errors.New("zero chunks")))
		return
	}

	doc := domain.Document{
		ID:             report.DocumentID,
		SourcePath:     req.Path,
		RawText:        raw,
		NormalizedText: normalized,
		Chunks:         chunks,
		CreatedAt:      report.StartedAt,
	}
	doc.Title, doc.BaseName = uc.resolveNames(ctx, req, raw)
	report.BaseName = doc.BaseName
	report.Chunks = len(chunks)

	var problems []string
	if err := uc.write(ctx, report, "cleaned/"+doc.BaseName+".txt", func(key string) (string, error) {
		return uc.deps.Store.WriteText(ctx, key, normalized)
	}); err != nil {
		problems = append(problems, err.Error())
	}

	result, translateErr := uc.deps.Translator.Translate(ctx, doc.ID, doc.Title, doc.Chunks)
	doc.Chunks = result.Chunks
	report.FailedChunks = result.Failed()
	report.Terms = result.Glossary.Len()
	if translateErr != nil {
		problems = append(problems, fmt.Sprintf("interrupted: %v", translateErr))
	}
	if report.FailedChunks > 0 {
		problems = append(problems, domain.WrapError(domain.ErrTranslationCall, "translate document",
			fmt.Errorf("%d of %d chunks failed", report.FailedChunks, report.Chunks)).Error())
	}

	problems = append(problems, uc.writeArtifacts(ctx, report, doc, result)...)

	if len(problems) == 0 {
		report.Status = domain.StatusCompleted
		return
	}
	report.Status = domain.StatusIncomplete
	report.Reason = strings.Join(problems, "; ")
}

func (uc *ProcessDocumentUseCase) writeArtifacts(ctx context.Context, report *domain.DocumentReport, doc domain.Document, result domain.TranslationResult) []string {
	var problems []string
	record := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	out := uc.deps.Assembler.Assemble(doc.Title, result.Chunks)
	rendered, err := uc.deps.Renderer.Render(out, result.Chunks)
	if err != nil {
		record(domain.WrapError(domain.ErrOutputWrite, "render translation", err))
	} else {
		record(uc.write(ctx, report, "translations/"+doc.BaseName+uc.deps.Renderer.Extension(), func(key string) (string, error) {
			return uc.deps.Store.WriteText(ctx, key, rendered)
		}))
	}

	if result.Glossary.Len() > 0 {
		record(uc.write(ctx, report, "translations/"+doc.BaseName+"_terminology.json", func(key string) (string, error) {
			return uc.deps.Store.WriteJSON(ctx, key, result.Glossary)
		}))
	}

	log := result.Log
	if log == nil {
		log = []domain.TranslationLogEntry{}
	}
	record(uc.write(ctx, report, "logs/"+doc.BaseName+"_translation_log.json", func(key string) (string, error) {
		return uc.deps.Store.WriteJSON(ctx, key, log)
	}))

	if uc.deps.Workbook != nil {
		record(uc.write(ctx, report, "logs/"+doc.BaseName+"_audit.xlsx", func(key string) (string, error) {
			return uc.deps.Workbook.Write(ctx, key, result.Log, result.Glossary)
		}))
	}
	return problems
}

func (uc *ProcessDocumentUseCase) write(_ context.Context, report *domain.DocumentReport, key string, fn func(key string) (string, error)) error {
	path, err := fn(key)
	if err != nil {
		slog.Error("artifact_write_failed", "document_id", report.DocumentID, "key", key, "error", err)
		if !domain.IsKind(err, domain.ErrOutputWrite) {
			err = domain.WrapError(domain.ErrOutputWrite, "write "+key, err)
		}
		return err
	}
	report.Artifacts = append(report.Artifacts, path)
	return nil
}

// resolveNames picks the display title and artifact base name. An explicit
// title wins for display; the base name comes from metadata when the call
// succeeds and from the file stem otherwise.
func (uc *ProcessDocumentUseCase) resolveNames(ctx context.Context, req domain.ProcessRequest, raw string) (string, string) {
	stem := SourceStem(req.Path)
	title := strings.TrimSpace(req.Title)

	var md domain.Metadata
	if uc.deps.Metadata != nil {
		var err error
		md, err = uc.deps.Metadata.ExtractMetadata(ctx, raw)
		if err != nil {
			slog.Warn("metadata_unavailable", "path", req.Path, "error", err)
			md = domain.Metadata{}
		}
	}

	if title == "" {
		title = strings.TrimSpace(md.Title)
	}
	if title == "" {
		title = stem
	}
	return title, BaseName(md, req.Path)
}

func (uc *ProcessDocumentUseCase) skip(report *domain.DocumentReport, reason error) {
	report.Status = domain.StatusSkipped
	report.Reason = reason.Error()
	slog.Warn("document_skipped", "document_id", report.DocumentID, "path", report.SourcePath, "reason", report.Reason)
}

func (uc *ProcessDocumentUseCase) finish(ctx context.Context, report domain.DocumentReport) {
	duration := report.FinishedAt.Sub(report.StartedAt)
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.FinishDocument(report.Status, duration)
	}
	if uc.deps.Recorder != nil {
		if err := uc.deps.Recorder.RecordDocument(context.WithoutCancel(ctx), report); err != nil {
			slog.Warn("run_record_failed", "document_id", report.DocumentID, "error", err)
		}
	}
	if uc.deps.Publisher != nil {
		if err := uc.deps.Publisher.PublishDocumentTranslated(context.WithoutCancel(ctx), report); err != nil {
			slog.Warn("result_publish_failed", "document_id", report.DocumentID, "error", err)
		}
	}
	slog.Info("document_finished",
		"document_id", report.DocumentID,
		"path", report.SourcePath,
		"status", report.Status,
		"chunks", report.Chunks,
		"failed_chunks", report.FailedChunks,
		"terms", report.Terms,
		"duration_ms", duration.Milliseconds(),
	)
}
