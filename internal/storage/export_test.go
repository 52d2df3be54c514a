package storage

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "run-1", Dt: 0.01}
	if err := ExportJSON(&buf, meta, sampleLog()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != "run-1" {
		t.Errorf("expected id run-1, got %s", data.ID)
	}
	if len(data.Rows) != 2 || data.Rows[1][0] != 0.01 {
		t.Errorf("unexpected rows %v", data.Rows)
	}
	if len(data.Header) != 7 {
		t.Errorf("expected 7 header fields, got %d", len(data.Header))
	}
}
