package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const exportSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	messages INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id   TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	direction    TEXT NOT NULL,
	sent_at      TEXT,
	body         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS topics (
	id      TEXT PRIMARY KEY,
	label   TEXT NOT NULL,
	total   INTEGER NOT NULL,
	example TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS contact_topics (
	contact_id TEXT NOT NULL,
	topic_id   TEXT NOT NULL,
	label      TEXT NOT NULL,
	count      INTEGER NOT NULL,
	PRIMARY KEY (contact_id, topic_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_contact ON messages(contact_id);
`

// SQLiteExporter writes the dataset as a relational SQLite snapshot.
// An existing file at the target path is replaced.
type SQLiteExporter struct{}

func (e *SQLiteExporter) SupportedFormats() []string {
	return []string{"sqlite", "db"}
}

func (e *SQLiteExporter) Export(ctx context.Context, ds *Dataset, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing sqlite export: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening sqlite export: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, exportSchema); err != nil {
		return fmt.Errorf("creating export schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting export transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range ds.Contacts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (id, name, messages) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Messages); err != nil {
			return fmt.Errorf("inserting contact %s: %w", c.ID, err)
		}
	}

	for _, m := range ds.Messages {
		var sentAt any
		if !m.Time.IsZero() {
			sentAt = m.Time.UTC().Format(time.RFC3339)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (contact_id, contact_name, direction, sent_at, body) VALUES (?, ?, ?, ?, ?)`,
			m.ContactID, m.ContactName, m.Direction.String(), sentAt, m.Body); err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	for _, tp := range ds.Topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (id, label, total, example) VALUES (?, ?, ?, ?)`,
			tp.ID, tp.Label, tp.Total, tp.Example); err != nil {
			return fmt.Errorf("inserting topic %s: %w", tp.ID, err)
		}
	}

	for _, ct := range ds.ContactTopics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_topics (contact_id, topic_id, label, count) VALUES (?, ?, ?, ?)`,
			ct.ContactID, ct.TopicID, ct.Label, ct.Count); err != nil {
			return fmt.Errorf("inserting contact topic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
