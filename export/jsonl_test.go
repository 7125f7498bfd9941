package export

import (
	"context"
	"path/filepath"
	"testing"

	"chatgraph/importer"
)

func TestJSONLExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.jsonl")

	if err := (&JSONLExporter{}).Export(context.Background(), testDataset(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// The export is a valid input for the jsonl importer.
	got, err := (&importer.JSONImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}

	want := testMessages()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ContactID != want[i].ContactID {
			t.Errorf("message %d ContactID = %q, want %q", i, got[i].ContactID, want[i].ContactID)
		}
		if got[i].Body != want[i].Body {
			t.Errorf("message %d Body = %q, want %q", i, got[i].Body, want[i].Body)
		}
		if got[i].Direction != want[i].Direction {
			t.Errorf("message %d Direction = %v, want %v", i, got[i].Direction, want[i].Direction)
		}
		if !got[i].Time.Equal(want[i].Time) {
			t.Errorf("message %d Time = %v, want %v", i, got[i].Time, want[i].Time)
		}
	}
}
