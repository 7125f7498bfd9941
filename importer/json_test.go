package importer

import (
	"context"
	"testing"

	"chatgraph/msg"
)

func TestJSONImportArray(t *testing.T) {
	path := writeFixture(t, "dump.json", `[
  {"contact_id": "alice", "contact_name": "Alice", "body": "see you at the garden", "direction": "incoming", "time": "2022-01-03T09:00:00Z"},
  {"contact_id": "alice", "body": "on my way", "direction": "outgoing"}
]`)

	got, err := (&JSONImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Direction != msg.Incoming || got[1].Direction != msg.Outgoing {
		t.Errorf("directions = %v, %v; want incoming, outgoing", got[0].Direction, got[1].Direction)
	}
	if got[0].Time.IsZero() {
		t.Error("message 0 should carry a timestamp")
	}
	if !got[1].Time.IsZero() {
		t.Error("message 1 should have a zero timestamp")
	}
}

func TestJSONImportWrapper(t *testing.T) {
	path := writeFixture(t, "dump.json", `{"messages": [
  {"contact_id": "bob", "body": "poker on friday?", "direction": 0}
]}`)

	got, err := (&JSONImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].ContactID != "bob" {
		t.Errorf("ContactID = %q, want %q", got[0].ContactID, "bob")
	}
	if got[0].Direction != msg.Incoming {
		t.Errorf("numeric direction 0 should decode as incoming, got %v", got[0].Direction)
	}
}

func TestJSONImportLines(t *testing.T) {
	path := writeFixture(t, "dump.jsonl", `{"contact_id": "alice", "body": "first", "direction": "incoming"}

{"contact_id": "alice", "body": "second", "direction": "outgoing"}
`)

	got, err := (&JSONImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[1].Body != "second" {
		t.Errorf("Body = %q, want %q", got[1].Body, "second")
	}
}

func TestJSONImportBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"not json", "dump.json", "plain text"},
		{"bad jsonl line", "dump.jsonl", "{\"contact_id\": \"a\", \"body\": \"ok\"}\nnot json\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.content)
			if _, err := (&JSONImporter{}).Import(context.Background(), path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestJSONImportObjectWithoutMessagesKey(t *testing.T) {
	// An object lacking the messages key is an empty dump, not an error.
	path := writeFixture(t, "dump.json", `{"rows": []}`)

	got, err := (&JSONImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no messages, got %d", len(got))
	}
}
