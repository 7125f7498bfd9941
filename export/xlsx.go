package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter writes the dataset as an Excel workbook with one sheet
// per table.
type XLSXExporter struct{}

func (e *XLSXExporter) SupportedFormats() []string {
	return []string{"xlsx"}
}

func (e *XLSXExporter) Export(ctx context.Context, ds *Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"Messages", []string{"contact_id", "contact_name", "direction", "time", "body"}, ds.messageRows()},
		{"Contacts", []string{"id", "name", "messages"}, ds.contactRows()},
		{"Topics", []string{"id", "label", "total", "example"}, ds.topicRows()},
		{"Contact Topics", []string{"contact_id", "topic_id", "label", "count"}, ds.contactTopicRows()},
	}

	if err := f.SetSheetName("Sheet1", sheets[0].name); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return fmt.Errorf("filling sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := setSheetRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setSheetRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
