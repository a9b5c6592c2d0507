package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is the supplementary, non-mandatory sqlite-backed history of
// client placements (SPEC_FULL §2): unlike the flat .session/ files,
// which only ever hold a client's *current* placement, the journal keeps
// every placement change so "where has window X lived" and "what was on
// screen 0 an hour ago" can be answered after the fact. Grounded directly
// on the teacher's apps/texelterm/parser/search_index.go, which is the
// one place in the pack driving database/sql against modernc.org/sqlite.
type Journal struct {
	db *sql.DB
}

// OpenJournal creates <home>/.session/journal.db and its schema if
// missing. A failure is returned as an error with a nil *Journal; the
// caller logs it, and a nil *Journal means "keep working without history."
func OpenJournal(home string) (*Journal, error) {
	dir := filepath.Join(home, ".session")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("session: journal mkdir: %w", err)
	}
	path := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open journal: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS placements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	win INTEGER NOT NULL,
	screen INTEGER NOT NULL,
	tag INTEGER NOT NULL,
	removed INTEGER NOT NULL DEFAULT 0,
	at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS placements_win ON placements(win);
CREATE INDEX IF NOT EXISTS placements_at ON placements(at);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordPlacement appends a row every time a client's (screen,tag) is
// written to the flat file, so the history survives even though the flat
// file itself only ever holds the latest value.
func (j *Journal) RecordPlacement(win uint32, screen, tag uint8) {
	if j == nil {
		return
	}
	_, err := j.db.Exec(`INSERT INTO placements(win, screen, tag, at) VALUES (?, ?, ?, ?)`,
		win, screen, tag, time.Now().Unix())
	if err != nil {
		log.Printf("journal: record placement win=%#x: %v", win, err)
	}
}

// RecordRemoval appends a tombstone row, letting History distinguish "no
// placement" from "was removed at time T" (§8 "persistence cleanup"
// testable property).
func (j *Journal) RecordRemoval(win uint32) {
	if j == nil {
		return
	}
	_, err := j.db.Exec(`INSERT INTO placements(win, screen, tag, removed, at) VALUES (?, 0, 0, 1, ?)`,
		win, time.Now().Unix())
	if err != nil {
		log.Printf("journal: record removal win=%#x: %v", win, err)
	}
}

// Placement is one historical row returned by History.
type Placement struct {
	Win       uint32
	Screen    uint8
	Tag       uint8
	Removed   bool
	At        time.Time
}

// History returns win's placement history, newest first, up to limit
// rows — the diagnostic query the mandatory flat format can't answer.
func (j *Journal) History(win uint32, limit int) ([]Placement, error) {
	if j == nil {
		return nil, nil
	}
	rows, err := j.db.Query(
		`SELECT win, screen, tag, removed, at FROM placements WHERE win = ? ORDER BY at DESC LIMIT ?`,
		win, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var p Placement
		var removed int
		var at int64
		if err := rows.Scan(&p.Win, &p.Screen, &p.Tag, &removed, &at); err != nil {
			return nil, err
		}
		p.Removed = removed != 0
		p.At = time.Unix(at, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}
