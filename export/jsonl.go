package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONLExporter writes the messages as line-delimited JSON. The output
// round-trips through the jsonl importer, so it doubles as a portable
// archive of the normalized messages.
type JSONLExporter struct{}

func (e *JSONLExporter) SupportedFormats() []string {
	return []string{"jsonl"}
}

func (e *JSONLExporter) Export(ctx context.Context, ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating jsonl export: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, m := range ds.Messages {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encoding message: %w", err)
		}
	}
	return f.Close()
}
