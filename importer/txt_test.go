package importer

import (
	"context"
	"testing"
	"time"

	"chatgraph/msg"
)

const transcriptFixture = `1/5/21, 9:41 AM - Messages and calls are end-to-end encrypted. No one outside of this chat can read or listen to them.
1/5/21, 9:41 AM - Alice: hey, are we still on for dinner tonight
1/5/21, 9:43 AM - Dana: yes! thinking the thai place
on the corner
1/5/21, 9:44 AM - Alice: <Media omitted>
1/5/21, 9:45 AM - Alice: perfect
`

func TestTranscriptImport(t *testing.T) {
	path := writeFixture(t, "chat.txt", transcriptFixture)

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// The encryption notice is dropped; the four chat lines survive.
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}

	for i, m := range got {
		if m.ContactID != "Alice" {
			t.Errorf("message %d ContactID = %q, want %q", i, m.ContactID, "Alice")
		}
	}

	wantDirs := []msg.Direction{msg.Incoming, msg.Outgoing, msg.Incoming, msg.Incoming}
	for i, want := range wantDirs {
		if got[i].Direction != want {
			t.Errorf("message %d direction = %v, want %v", i, got[i].Direction, want)
		}
	}

	wantTime := time.Date(2021, 1, 5, 9, 41, 0, 0, time.UTC)
	if !got[0].Time.Equal(wantTime) {
		t.Errorf("message 0 time = %v, want %v", got[0].Time, wantTime)
	}
}

func TestTranscriptContinuationLines(t *testing.T) {
	path := writeFixture(t, "chat.txt", transcriptFixture)

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	want := "yes! thinking the thai place\non the corner"
	if got[1].Body != want {
		t.Errorf("continuation body = %q, want %q", got[1].Body, want)
	}
}

func TestTranscriptMediaPlaceholderCleared(t *testing.T) {
	path := writeFixture(t, "chat.txt", transcriptFixture)

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// The exchange still counts but the placeholder text is gone.
	if got[2].Body != "" {
		t.Errorf("media placeholder body = %q, want empty", got[2].Body)
	}
}

func TestTranscriptBracketLayout(t *testing.T) {
	path := writeFixture(t, "chat.txt", `[05.01.21, 22:23:47] Alice: late one today
[05.01.21, 22:24:01] Dana: tell me about it
`)

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}

	wantTime := time.Date(2021, 1, 5, 22, 23, 47, 0, time.UTC)
	if !got[0].Time.Equal(wantTime) {
		t.Errorf("message 0 time = %v, want %v", got[0].Time, wantTime)
	}
	if got[1].Direction != msg.Outgoing {
		t.Errorf("own line direction = %v, want outgoing", got[1].Direction)
	}
}

func TestTranscriptGroupChatDropsOwnLines(t *testing.T) {
	path := writeFixture(t, "group.txt", `1/5/21, 9:41 AM - Alice: anyone up for a hike saturday
1/5/21, 9:42 AM - Bob: count me in
1/5/21, 9:43 AM - Dana: same here
`)

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// Two other participants means the owner's lines have no single
	// addressee and are dropped.
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].ContactID != "Alice" || got[1].ContactID != "Bob" {
		t.Errorf("contacts = %q, %q; want Alice, Bob", got[0].ContactID, got[1].ContactID)
	}
}

func TestTranscriptWithoutSelfName(t *testing.T) {
	path := writeFixture(t, "chat.txt", `1/5/21, 9:41 AM - Alice: morning
1/5/21, 9:42 AM - Dana: morning yourself
`)

	got, err := (&TranscriptImporter{}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}

	// With no owner configured every line is incoming from its sender.
	for i, m := range got {
		if m.Direction != msg.Incoming {
			t.Errorf("message %d direction = %v, want incoming", i, m.Direction)
		}
	}
	if got[1].ContactID != "Dana" {
		t.Errorf("ContactID = %q, want %q", got[1].ContactID, "Dana")
	}
}

func TestTranscriptUnparseableTimestampKeepsMessage(t *testing.T) {
	path := writeFixture(t, "chat.txt", "13/45/21, 9:41 AM - Alice: odd clock on this export\n")

	got, err := (&TranscriptImporter{SelfName: "Dana"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if !got[0].Time.IsZero() {
		t.Errorf("time = %v, want zero", got[0].Time)
	}
}
