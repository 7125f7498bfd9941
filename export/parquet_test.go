package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestParquetExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.parquet")

	if err := (&ParquetExporter{}).Export(context.Background(), testDataset(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := parquet.ReadFile[parquetMessage](path)
	if err != nil {
		t.Fatalf("reading parquet export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].ContactID != "alice" || rows[0].Direction != "incoming" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].SentAt == 0 {
		t.Error("row 0 should carry a timestamp")
	}
	if rows[1].SentAt != 0 {
		t.Errorf("row 1 timestamp = %d, want 0 for an undated message", rows[1].SentAt)
	}
	if rows[2].Body != "poker friday?" {
		t.Errorf("row 2 body = %q", rows[2].Body)
	}
}

func TestParquetExportEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")

	if err := (&ParquetExporter{}).Export(context.Background(), &Dataset{}, path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := parquet.ReadFile[parquetMessage](path)
	if err != nil {
		t.Fatalf("reading parquet export: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
