// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger remembers scraped paper pages and written files so a rerun skips
// finished work.
type Ledger struct {
	db *sql.DB
}

// FileEntry is one written data file.
type FileEntry struct {
	Journal   string
	Year      int
	Path      string
	Papers    int
	WrittenAt time.Time
}

// OpenLedger opens or creates the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS paper_details (
			page_url TEXT PRIMARY KEY,
			abstract TEXT NOT NULL,
			link TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			journal TEXT NOT NULL,
			year INTEGER NOT NULL,
			path TEXT NOT NULL,
			papers INTEGER NOT NULL,
			written_at TEXT NOT NULL,
			PRIMARY KEY (journal, year)
		)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Detail returns the cached detail of a paper page.
func (l *Ledger) Detail(ctx context.Context, pageURL string) (Detail, bool, error) {
	var d Detail
	err := l.db.QueryRowContext(ctx,
		`SELECT abstract, link FROM paper_details WHERE page_url = ?`, pageURL,
	).Scan(&d.Abstract, &d.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return Detail{}, false, nil
	}
	if err != nil {
		return Detail{}, false, fmt.Errorf("reading detail of %s: %w", pageURL, err)
	}
	return d, true, nil
}

// SaveDetail caches the detail of a paper page.
func (l *Ledger) SaveDetail(ctx context.Context, pageURL string, d Detail) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO paper_details (page_url, abstract, link, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(page_url) DO UPDATE SET abstract = excluded.abstract, link = excluded.link,
		 fetched_at = excluded.fetched_at`,
		pageURL, d.Abstract, d.Link, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving detail of %s: %w", pageURL, err)
	}
	return nil
}

// FileDone reports whether the file for journal and year was written.
func (l *Ledger) FileDone(ctx context.Context, journal string, year int) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT count(*) FROM files WHERE journal = ? AND year = ?`, journal, year,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking file %s %d: %w", journal, year, err)
	}
	return n > 0, nil
}

// MarkFile records a written file.
func (l *Ledger) MarkFile(ctx context.Context, e FileEntry) error {
	if e.WrittenAt.IsZero() {
		e.WrittenAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO files (journal, year, path, papers, written_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(journal, year) DO UPDATE SET path = excluded.path, papers = excluded.papers,
		 written_at = excluded.written_at`,
		e.Journal, e.Year, e.Path, e.Papers, e.WrittenAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording file %s %d: %w", e.Journal, e.Year, err)
	}
	return nil
}

// Files lists written files ordered by journal and year.
func (l *Ledger) Files(ctx context.Context) ([]FileEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT journal, year, path, papers, written_at FROM files ORDER BY journal, year`)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var out []FileEntry
	for rows.Next() {
		var e FileEntry
		var written string
		if err := rows.Scan(&e.Journal, &e.Year, &e.Path, &e.Papers, &written); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}
		e.WrittenAt, _ = time.Parse(time.RFC3339, written)
		out = append(out, e)
	}
	return out, rows.Err()
}
