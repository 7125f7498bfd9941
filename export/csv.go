package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVExporter writes the dataset as one CSV file per table inside the
// target directory, which is created if needed.
type CSVExporter struct{}

func (e *CSVExporter) SupportedFormats() []string {
	return []string{"csv"}
}

func (e *CSVExporter) Export(ctx context.Context, ds *Dataset, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"messages.csv", []string{"contact_id", "contact_name", "direction", "time", "body"}, ds.messageRows()},
		{"contacts.csv", []string{"id", "name", "messages"}, ds.contactRows()},
		{"topics.csv", []string{"id", "label", "total", "example"}, ds.topicRows()},
		{"contact_topics.csv", []string{"contact_id", "topic_id", "label", "count"}, ds.contactTopicRows()},
	}

	for _, f := range files {
		if err := writeCSV(filepath.Join(path, f.name), f.header, f.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
