package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"chatgraph/msg"
)

// PDFImporter reads chat transcripts saved as PDF. Pages are flattened
// to plain text and parsed with the same line layouts as the txt
// importer.
type PDFImporter struct {
	SelfName string
}

func (p *PDFImporter) SupportedFormats() []string {
	return []string{"pdf"}
}

func (p *PDFImporter) Import(ctx context.Context, path string) ([]msg.Message, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf transcript: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return parseTranscript(b.String(), p.SelfName), nil
}
