package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONLoggerAddsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "translator", "warn")

	logger.Info("chunk_translated", "chunk", 1)
	logger.Warn("chunk_failed", "chunk", 2)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected exactly one json record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "chunk_failed" || record["service"] != "translator" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestDebugLoggerRecordsSource(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLoggerTo(&buf, "translator", "DEBUG").Debug("term_harvested")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := record["source"]; !ok {
		t.Fatalf("debug records should carry source, got %v", record)
	}
}
