package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"chatgraph/msg"
)

// TranscriptImporter reads exported chat transcripts in the common
// "timestamp - Sender: body" layouts written by WhatsApp and similar
// apps. SelfName marks the owner's lines as outgoing; when it is empty
// every line is treated as incoming from its sender.
type TranscriptImporter struct {
	SelfName string
}

func (p *TranscriptImporter) SupportedFormats() []string {
	return []string{"txt"}
}

func (p *TranscriptImporter) Import(ctx context.Context, path string) ([]msg.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return parseTranscript(string(data), p.SelfName), nil
}

// Transcript line layouts:
//
//	12/31/21, 9:41 PM - Alice: body
//	[31.12.21, 21:41:05] Alice: body
//
// Lines that start with a timestamp but carry no "Sender:" part are
// system notices (encryption banner, group events) and are dropped.
// Lines without a timestamp continue the previous message body.
var (
	dashLineRe    = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}), (\d{1,2}:\d{2}(?::\d{2})?)\s*([APap][Mm])? - ([^:]+): (.*)$`)
	bracketLineRe = regexp.MustCompile(`^\[(\d{1,2}[./]\d{1,2}[./]\d{2,4}), (\d{1,2}:\d{2}(?::\d{2})?)\] ([^:]+): (.*)$`)
	timestampRe   = regexp.MustCompile(`^\[?\d{1,2}[./]\d{1,2}[./]\d{2,4},`)
)

type transcriptEntry struct {
	sender string
	body   string
	time   time.Time
}

func parseTranscript(text, selfName string) []msg.Message {
	var entries []transcriptEntry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sender, body, ts, ok := matchTranscriptLine(line); ok {
			entries = append(entries, transcriptEntry{
				sender: sender,
				body:   scrubPlaceholder(body),
				time:   ts,
			})
			continue
		}
		if timestampRe.MatchString(line) {
			continue
		}
		if len(entries) > 0 {
			last := &entries[len(entries)-1]
			if last.body != "" {
				last.body += "\n"
			}
			last.body += line
		}
	}
	return orientTranscript(entries, selfName)
}

func matchTranscriptLine(line string) (sender, body string, ts time.Time, ok bool) {
	if m := dashLineRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[4]), m[5], parseTranscriptTime(m[1], m[2], m[3]), true
	}
	if m := bracketLineRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[3]), m[4], parseTranscriptTime(m[1], m[2], ""), true
	}
	return "", "", time.Time{}, false
}

// orientTranscript turns raw entries into directed messages. The
// owner's lines become outgoing to the sole other participant; in a
// group transcript they have no single addressee and are dropped.
func orientTranscript(entries []transcriptEntry, selfName string) []msg.Message {
	var others []string
	seen := make(map[string]bool)
	for _, e := range entries {
		key := strings.ToLower(e.sender)
		if seen[key] || strings.EqualFold(e.sender, selfName) {
			continue
		}
		seen[key] = true
		others = append(others, e.sender)
	}

	out := make([]msg.Message, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		if selfName != "" && strings.EqualFold(e.sender, selfName) {
			if len(others) != 1 {
				dropped++
				continue
			}
			out = append(out, msg.Message{
				ContactID:   others[0],
				ContactName: others[0],
				Body:        e.body,
				Direction:   msg.Outgoing,
				Time:        e.time,
			})
			continue
		}
		out = append(out, msg.Message{
			ContactID:   e.sender,
			ContactName: e.sender,
			Body:        e.body,
			Direction:   msg.Incoming,
			Time:        e.time,
		})
	}
	if dropped > 0 {
		slog.Warn("transcript: dropped own messages without a single addressee",
			"dropped", dropped,
			"participants", len(others))
	}
	return out
}

func parseTranscriptTime(date, clock, ampm string) time.Time {
	s := date + " " + clock
	layouts := []string{
		"1/2/06 15:04", "1/2/06 15:04:05",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
		"2.1.06 15:04", "2.1.06 15:04:05",
		"2.1.2006 15:04", "2.1.2006 15:04:05",
	}
	if ampm != "" {
		s += " " + strings.ToUpper(ampm)
		layouts = []string{
			"1/2/06 3:04 PM", "1/2/06 3:04:05 PM",
			"1/2/2006 3:04 PM", "1/2/2006 3:04:05 PM",
		}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Placeholder bodies the export apps substitute for non-text content.
// The message is kept so the exchange still counts, but the body is
// cleared so the placeholder text never reaches topic extraction.
var placeholderBodies = map[string]bool{
	"<media omitted>":          true,
	"image omitted":            true,
	"video omitted":            true,
	"audio omitted":            true,
	"sticker omitted":          true,
	"this message was deleted": true,
	"you deleted this message": true,
	"null":                     true,
}

func scrubPlaceholder(body string) string {
	if placeholderBodies[strings.ToLower(strings.TrimSpace(body))] {
		return ""
	}
	return body
}
