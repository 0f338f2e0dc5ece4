// Package history keeps a SQLite ledger of completed runs: what was read, what
// was written and how much work the marker did.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started TEXT NOT NULL,
  input TEXT NOT NULL,
  output TEXT NOT NULL,
  digest TEXT NOT NULL,
  strategy TEXT NOT NULL,
  input_bytes INTEGER NOT NULL,
  lines INTEGER NOT NULL,
  trimmed INTEGER NOT NULL DEFAULT 0,
  rejections INTEGER NOT NULL DEFAULT 0,
  comparisons INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  written INTEGER NOT NULL DEFAULT 0,
  collapsed INTEGER NOT NULL DEFAULT 0,
  write_error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);
`

const timeFormat = "2006-01-02T15:04:05Z"

// Run is one ledger row. WriteError is empty for runs that wrote everything.
type Run struct {
	ID          int64
	Started     time.Time
	Input       string
	Output      string
	Digest      string
	Strategy    string
	InputBytes  int
	Lines       int
	Trimmed     int
	Rejections  int
	Comparisons int
	Duplicates  int
	Written     int
	Collapsed   int
	WriteError  string
}

// Ledger is a SQLite-backed run history.
type Ledger struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the ledger at dbPath, creating parent directories as
// needed, and ensures the schema exists.
func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Ledger{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.dbPath
}

// Record appends r and returns its assigned ID. Started defaults to now.
func (l *Ledger) Record(r Run) (int64, error) {
	if r.Started.IsZero() {
		r.Started = time.Now()
	}

	var writeErr sql.NullString
	if r.WriteError != "" {
		writeErr = sql.NullString{String: r.WriteError, Valid: true}
	}

	res, err := l.db.Exec(`INSERT INTO runs
		(started, input, output, digest, strategy, input_bytes, lines, trimmed,
		 rejections, comparisons, duplicates, written, collapsed, write_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Started.UTC().Format(timeFormat),
		r.Input,
		r.Output,
		r.Digest,
		r.Strategy,
		r.InputBytes,
		r.Lines,
		r.Trimmed,
		r.Rejections,
		r.Comparisons,
		r.Duplicates,
		r.Written,
		r.Collapsed,
		writeErr,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

const selectRuns = `SELECT id, started, input, output, digest, strategy, input_bytes, lines,
	trimmed, rejections, comparisons, duplicates, written, collapsed, write_error FROM runs`

// Recent returns up to limit runs, newest first. A limit of 0 or less
// returns every run.
func (l *Ledger) Recent(limit int) ([]Run, error) {
	query := selectRuns + " ORDER BY id DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// LastWithDigest returns the newest run whose input had the given digest.
func (l *Ledger) LastWithDigest(digest string) (Run, bool, error) {
	row := l.db.QueryRow(selectRuns+" WHERE digest = ? ORDER BY id DESC LIMIT 1", digest)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return r, true, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r        Run
		started  string
		writeErr sql.NullString
	)
	err := s.Scan(&r.ID, &started, &r.Input, &r.Output, &r.Digest, &r.Strategy,
		&r.InputBytes, &r.Lines, &r.Trimmed, &r.Rejections, &r.Comparisons,
		&r.Duplicates, &r.Written, &r.Collapsed, &writeErr)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}

	r.Started, err = time.Parse(timeFormat, started)
	if err != nil {
		return Run{}, fmt.Errorf("invalid started timestamp %q: %w", started, err)
	}
	r.WriteError = writeErr.String
	return r, nil
}
