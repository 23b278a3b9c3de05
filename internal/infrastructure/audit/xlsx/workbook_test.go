package xlsx

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type memSaver struct {
	key  string
	data []byte
}

func (m *memSaver) Save(_ context.Context, key string, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.key, m.data = key, raw
	return "/out/" + key, nil
}

func TestWriteProducesLogAndGlossarySheets(t *testing.T) {
	glossary := domain.NewGlossary()
	glossary.Add("Shadow", "阴影", 0)
	log := []domain.TranslationLogEntry{
		{ChunkIndex: 0, SourceLength: 1200, OutputLength: 800, Timestamp: time.Unix(0, 0), Outcome: domain.OutcomeTranslated},
		{ChunkIndex: 1, SourceLength: 1400, Timestamp: time.Unix(60, 0), Outcome: domain.OutcomeFailed, Error: "timeout"},
	}

	saver := &memSaver{}
	path, err := NewWriter(saver).Write(context.Background(), "logs/doc_audit.xlsx", log, glossary)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != "/out/logs/doc_audit.xlsx" {
		t.Fatalf("unexpected path %q", path)
	}

	f, err := excelize.OpenReader(bytes.NewReader(saver.data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(logSheet)
	if err != nil {
		t.Fatalf("GetRows(log) error = %v", err)
	}
	if len(rows) != 3 || rows[2][1] != "failed" || rows[2][5] != "timeout" {
		t.Fatalf("unexpected log rows %v", rows)
	}

	terms, err := f.GetRows(glossarySheet)
	if err != nil {
		t.Fatalf("GetRows(glossary) error = %v", err)
	}
	if len(terms) != 2 || terms[1][0] != "Shadow" || terms[1][1] != "阴影" {
		t.Fatalf("unexpected glossary rows %v", terms)
	}
}
