package xlsx

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

const (
	logSheet      = "translation_log"
	glossarySheet = "terminology"
)

// Saver is the part of the artifact store the workbook needs.
type Saver interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
}

// Writer renders the chunk log and glossary of one document as a workbook.
type Writer struct {
	store Saver
}

func NewWriter(store Saver) *Writer {
	return &Writer{store: store}
}

func (w *Writer) Write(ctx context.Context, key string, log []domain.TranslationLogEntry, glossary *domain.Glossary) (string, error) {
	f, err := Build(log, glossary)
	if err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "build audit workbook", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", domain.WrapError(domain.ErrOutputWrite, "encode audit workbook", err)
	}
	return w.store.Save(ctx, key, buf)
}

func Build(log []domain.TranslationLogEntry, glossary *domain.Glossary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(glossarySheet); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	logHeader := []any{"chunk", "outcome", "source_length", "output_length", "timestamp", "error"}
	if err := writeHeader(f, logSheet, logHeader, header); err != nil {
		return nil, err
	}
	for i, entry := range log {
		row := []any{
			entry.ChunkIndex + 1,
			string(entry.Outcome),
			entry.SourceLength,
			entry.OutputLength,
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.Error,
		}
		if err := f.SetSheetRow(logSheet, cellName(1, i+2), &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(logSheet, "E", "E", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(logSheet, "F", "F", 60); err != nil {
		return nil, err
	}

	if err := writeHeader(f, glossarySheet, []any{"term", "gloss", "first_chunk"}, header); err != nil {
		return nil, err
	}
	if glossary != nil {
		for i, entry := range glossary.Entries() {
			row := []any{entry.Term, entry.Gloss, entry.FirstChunk + 1}
			if err := f.SetSheetRow(glossarySheet, cellName(1, i+2), &row); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(glossarySheet, "A", "B", 30); err != nil {
		return nil, err
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, cols []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
