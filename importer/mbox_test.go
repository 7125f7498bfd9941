package importer

import (
	"context"
	"testing"
	"time"

	"chatgraph/msg"
)

const mboxFixture = `From alice@example.com Mon Jan  3 09:00:00 2022
From: Alice Chen <alice@example.com>
To: Dana <dana@example.com>
Date: Mon, 03 Jan 2022 09:00:00 +0000
Subject: garden
Content-Type: text/plain; charset=utf-8

The tomatoes are finally coming in, you should stop by.
>From the first row you can smell the basil.

From dana@example.com Mon Jan  3 10:00:00 2022
From: Dana <dana@example.com>
To: Alice Chen <alice@example.com>
Date: Mon, 03 Jan 2022 10:00:00 +0000
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Caf=C3=A9 at noon=2C then?
`

func TestMboxImport(t *testing.T) {
	path := writeFixture(t, "archive.mbox", mboxFixture)

	got, err := (&MboxImporter{SelfAddress: "dana@example.com"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}

	in := got[0]
	if in.Direction != msg.Incoming {
		t.Errorf("message 0 direction = %v, want incoming", in.Direction)
	}
	if in.ContactID != "alice@example.com" {
		t.Errorf("ContactID = %q, want %q", in.ContactID, "alice@example.com")
	}
	if in.ContactName != "Alice Chen" {
		t.Errorf("ContactName = %q, want %q", in.ContactName, "Alice Chen")
	}

	wantBody := "The tomatoes are finally coming in, you should stop by.\nFrom the first row you can smell the basil."
	if in.Body != wantBody {
		t.Errorf("body = %q, want %q", in.Body, wantBody)
	}

	wantTime := time.Date(2022, 1, 3, 9, 0, 0, 0, time.UTC)
	if !in.Time.Equal(wantTime) {
		t.Errorf("time = %v, want %v", in.Time, wantTime)
	}
}

func TestMboxImportOutgoing(t *testing.T) {
	path := writeFixture(t, "archive.mbox", mboxFixture)

	got, err := (&MboxImporter{SelfAddress: "dana@example.com"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	out := got[1]
	if out.Direction != msg.Outgoing {
		t.Fatalf("direction = %v, want outgoing", out.Direction)
	}
	// Outgoing mail attributes to the recipient, not the sender.
	if out.ContactID != "alice@example.com" {
		t.Errorf("ContactID = %q, want %q", out.ContactID, "alice@example.com")
	}
	if out.Body != "Café at noon, then?" {
		t.Errorf("quoted-printable body = %q, want %q", out.Body, "Café at noon, then?")
	}
}

func TestMboxImportMultipart(t *testing.T) {
	path := writeFixture(t, "archive.mbox", `From bob@example.com Tue Jan  4 08:00:00 2022
From: Bob <bob@example.com>
To: Dana <dana@example.com>
Date: Tue, 04 Jan 2022 08:00:00 +0000
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=utf-8

poker night is back on
--b1
Content-Type: text/html

<p>poker night is back on</p>
--b1--
`)

	got, err := (&MboxImporter{SelfAddress: "dana@example.com"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].Body != "poker night is back on" {
		t.Errorf("body = %q, want the text/plain part", got[0].Body)
	}
}

func TestMboxImportSkipsMalformedMail(t *testing.T) {
	path := writeFixture(t, "archive.mbox", `From alice@example.com Mon Jan  3 09:00:00 2022
From: Alice <alice@example.com>
Date: Mon, 03 Jan 2022 09:00:00 +0000

first mail

From nowhere Mon Jan  3 09:30:00 2022
this segment has no headers at all

From alice@example.com Mon Jan  3 10:00:00 2022
From: Alice <alice@example.com>
Date: Mon, 03 Jan 2022 10:00:00 +0000

third mail
`)

	got, err := (&MboxImporter{SelfAddress: "dana@example.com"}).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Body != "first mail" || got[1].Body != "third mail" {
		t.Errorf("bodies = %q, %q; want the two well-formed mails", got[0].Body, got[1].Body)
	}
}
