package index

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// The index lives in memory only and is rebuilt from the published
// state, so nothing outlives the process.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
    seq         INTEGER PRIMARY KEY,
    ts          TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL,
    body        TEXT NOT NULL,
    attachment  TEXT NOT NULL DEFAULT '',
    line_number INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS messages_author ON messages(author);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    body,
    content=messages,
    content_rowid=seq,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, body) VALUES (new.seq, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.seq, old.body);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

const tsLayout = "2006-01-02T15:04:05"

type DB struct {
	db *sql.DB
}

func OpenDB() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// every new connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

// IndexedSeq is the ingestion ticket whose records are indexed, 0 if none.
func (d *DB) IndexedSeq() (uint64, error) {
	var v string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'seq'").Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

type AuthorCount struct {
	Author   string
	Messages int
	First    string
	Last     string
}

// AuthorCounts returns per-author message counts in first-seen order.
func (d *DB) AuthorCounts() ([]AuthorCount, error) {
	rows, err := d.db.Query(`
		SELECT author, COUNT(*), MIN(ts), MAX(ts)
		FROM messages
		GROUP BY author
		ORDER BY MIN(seq)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []AuthorCount
	for rows.Next() {
		var c AuthorCount
		if err := rows.Scan(&c.Author, &c.Messages, &c.First, &c.Last); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type MessageRow struct {
	Seq        int
	Ts         string
	Author     string
	Body       string
	Attachment string
	LineNumber int
}

func (d *DB) GetMessage(seq int) (*MessageRow, error) {
	var m MessageRow
	err := d.db.QueryRow(
		"SELECT seq, ts, author, body, attachment, line_number FROM messages WHERE seq = ?",
		seq,
	).Scan(&m.Seq, &m.Ts, &m.Author, &m.Body, &m.Attachment, &m.LineNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
