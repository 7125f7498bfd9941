package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"chatgraph/msg"
)

// SMS Backup & Restore type codes. Drafts, outbox and queued entries
// use higher values and are skipped.
const (
	smsTypeReceived = 1
	smsTypeSent     = 2
)

// SMSImporter reads SMS Backup & Restore XML exports, the <smses>
// format produced by the Android app of the same name.
type SMSImporter struct{}

func (p *SMSImporter) SupportedFormats() []string {
	return []string{"xml"}
}

type smsFile struct {
	XMLName xml.Name    `xml:"smses"`
	Records []smsRecord `xml:"sms"`
}

type smsRecord struct {
	Address     string `xml:"address,attr"`
	ContactName string `xml:"contact_name,attr"`
	Body        string `xml:"body,attr"`
	Type        int    `xml:"type,attr"`
	Date        int64  `xml:"date,attr"`
}

func (p *SMSImporter) Import(ctx context.Context, path string) ([]msg.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sms export: %w", err)
	}
	defer f.Close()

	var file smsFile
	if err := xml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing sms export: %w", err)
	}

	out := make([]msg.Message, 0, len(file.Records))
	for _, rec := range file.Records {
		var dir msg.Direction
		switch rec.Type {
		case smsTypeReceived:
			dir = msg.Incoming
		case smsTypeSent:
			dir = msg.Outgoing
		default:
			continue
		}

		// The app writes "(Unknown)" or "null" when the address book
		// has no entry for the number.
		name := rec.ContactName
		if name == "(Unknown)" || name == "null" {
			name = ""
		}

		m := msg.Message{
			ContactID:   rec.Address,
			ContactName: name,
			Body:        rec.Body,
			Direction:   dir,
		}
		if rec.Date > 0 {
			m.Time = time.UnixMilli(rec.Date).UTC()
		}
		out = append(out, m)
	}
	return out, nil
}
