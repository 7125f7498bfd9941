package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"chatgraph/msg"
)

// MboxImporter reads Unix mbox mail archives. Each mail becomes one
// message; the counterparty is the sender for incoming mail and the
// first To recipient for mail sent from SelfAddress. Mails that fail
// to parse are skipped rather than aborting the import.
type MboxImporter struct {
	SelfAddress string
}

func (p *MboxImporter) SupportedFormats() []string {
	return []string{"mbox"}
}

func (p *MboxImporter) Import(ctx context.Context, path string) ([]msg.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox: %w", err)
	}
	defer f.Close()

	var out []msg.Message
	var raw bytes.Buffer
	flush := func() {
		if raw.Len() == 0 {
			return
		}
		if m, ok := p.parseMail(raw.Bytes()); ok {
			out = append(out, m)
		}
		raw.Reset()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") {
			flush()
			continue
		}
		// mboxrd quoting protects literal "From " lines in bodies.
		if strings.HasPrefix(line, ">") && strings.HasPrefix(strings.TrimLeft(line, ">"), "From ") {
			line = line[1:]
		}
		raw.WriteString(line)
		raw.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mbox: %w", err)
	}
	flush()
	return out, nil
}

func (p *MboxImporter) parseMail(raw []byte) (msg.Message, bool) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return msg.Message{}, false
	}
	from, err := mail.ParseAddress(m.Header.Get("From"))
	if err != nil {
		return msg.Message{}, false
	}

	var dir msg.Direction
	var other *mail.Address
	if p.SelfAddress != "" && strings.EqualFold(from.Address, p.SelfAddress) {
		dir = msg.Outgoing
		tos, err := mail.ParseAddressList(m.Header.Get("To"))
		if err != nil || len(tos) == 0 {
			return msg.Message{}, false
		}
		other = tos[0]
	} else {
		dir = msg.Incoming
		other = from
	}

	body, err := readMailBody(m)
	if err != nil {
		return msg.Message{}, false
	}

	out := msg.Message{
		ContactID:   strings.ToLower(other.Address),
		ContactName: other.Name,
		Body:        body,
		Direction:   dir,
	}
	if t, err := m.Header.Date(); err == nil {
		out.Time = t.UTC()
	}
	return out, true
}

// readMailBody returns the mail text: the first text/plain part of a
// multipart mail, or the whole body otherwise, with the transfer
// encoding undone.
func readMailBody(m *mail.Message) (string, error) {
	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(m.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", err
			}
			partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
			if partType == "" || partType == "text/plain" {
				data, err := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
				if err != nil {
					return "", err
				}
				return strings.TrimSpace(string(data)), nil
			}
		}
		return "", nil
	}

	data, err := io.ReadAll(decodeTransfer(m.Body, m.Header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}
