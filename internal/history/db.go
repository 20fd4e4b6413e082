package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    run_id        TEXT PRIMARY KEY,
    command       TEXT NOT NULL,
    started_at    TEXT NOT NULL,
    finished_at   TEXT NOT NULL,
    inputs        TEXT NOT NULL DEFAULT '',
    output        TEXT NOT NULL DEFAULT '',
    total         INTEGER NOT NULL DEFAULT 0,
    uuid_dupes    INTEGER NOT NULL DEFAULT 0,
    content_dupes INTEGER NOT NULL DEFAULT 0,
    kept          INTEGER NOT NULL DEFAULT 0,
    malformed     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion is bumped whenever the runs table changes shape.
const schemaVersion = "1"

const timeLayout = "2006-01-02T15:04:05Z"

// DB is the run ledger. It stores one summary row per successful run and
// never the records themselves.
type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Run is one completed merge or collect invocation.
type Run struct {
	ID           string
	Command      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Inputs       []string
	Output       string // "" means stdout
	Total        int
	UUIDDupes    int
	ContentDupes int
	Kept         int
	Malformed    int
}

// RecordRun stores r, assigning an ID when it has none, and returns the ID.
func (d *DB) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := d.db.Exec(
		`INSERT INTO runs (run_id, command, started_at, finished_at, inputs, output, total, uuid_dupes, content_dupes, kept, malformed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Command,
		r.StartedAt.UTC().Format(timeLayout),
		r.FinishedAt.UTC().Format(timeLayout),
		strings.Join(r.Inputs, "\n"),
		r.Output,
		r.Total,
		r.UUIDDupes,
		r.ContentDupes,
		r.Kept,
		r.Malformed,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.ID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		`SELECT run_id, command, started_at, finished_at, inputs, output, total, uuid_dupes, content_dupes, kept, malformed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished, inputs string
		if err := rows.Scan(&r.ID, &r.Command, &started, &finished, &inputs, &r.Output,
			&r.Total, &r.UUIDDupes, &r.ContentDupes, &r.Kept, &r.Malformed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		if inputs != "" {
			r.Inputs = strings.Split(inputs, "\n")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (d *DB) RunCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func (d *DB) SchemaVersion() (string, error) {
	var v string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&v)
	return v, err
}
