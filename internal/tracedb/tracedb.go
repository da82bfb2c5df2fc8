// Package tracedb implements corec's optional --trace-db diagnostics log: a
// small SQLite database (driven through modernc.org/sqlite, a pure-Go
// driver so the CLI stays cgo-free) recording one row per pipeline stage
// completion, keyed by a github.com/google/uuid run ID so a batch of CI
// compiles can be inspected after the fact without re-running them.
package tracedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/nplang/corec/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stage_events (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	filename  TEXT NOT NULL,
	stage     TEXT NOT NULL,
	failed    INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
`

// DB is a handle to the trace database. A DB is safe for concurrent use by
// multiple goroutines, matching database/sql's own concurrency contract
// (pipeline.CompileAll runs one pipeline per file concurrently and each
// reports through the same DB).
type DB struct {
	sql *sql.DB
}

// Open creates (if necessary) and opens the SQLite database at path,
// ensuring its schema exists.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracedb: opening %s: %w", path, err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tracedb: creating schema in %s: %w", path, err)
	}
	return &DB{sql: sqlDB}, nil
}

// Close releases the underlying database connection.
func (db *DB) Close() error {
	return db.sql.Close()
}

// Run represents one invocation of corec (one or more files compiled
// together), identified by a fresh UUID.
type Run struct {
	db *DB
	id uuid.UUID
}

// NewRun starts a run, recording its start time, and returns a handle that
// Trace hooks can attach stage events to.
func (db *DB) NewRun() (*Run, error) {
	id := uuid.New()
	if _, err := db.sql.Exec(
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id.String(), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("tracedb: recording run start: %w", err)
	}
	return &Run{db: db, id: id}, nil
}

// ID returns the run's UUID, printed by corec compile --trace-db so a later
// query can find this run's rows.
func (r *Run) ID() uuid.UUID { return r.id }

// TraceHook returns a pipeline.Pipeline.Trace-compatible function recording
// every stage completion for res.Filename under this run.
func (r *Run) TraceHook() func(stage pipeline.Stage, res *pipeline.Result) {
	return func(stage pipeline.Stage, res *pipeline.Result) {
		_, err := r.db.sql.Exec(
			`INSERT INTO stage_events (run_id, filename, stage, failed, recorded_at) VALUES (?, ?, ?, ?, ?)`,
			r.id.String(), res.Filename, string(stage), boolToInt(res.Diags.HasFatal()), time.Now().UTC().Format(time.RFC3339Nano),
		)
		// A failed trace write must never abort compilation; it is
		// diagnostics-for-later, not part of the compile itself.
		_ = err
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StageEvent is one recorded row, returned by EventsForRun for inspection
// (the corec CLI does not currently expose a query subcommand, but tests
// and ad-hoc debugging read the database directly through this type).
type StageEvent struct {
	Filename string
	Stage    string
	Failed   bool
}

// EventsForRun returns every stage event recorded for runID, in insertion
// order.
func (db *DB) EventsForRun(runID uuid.UUID) ([]StageEvent, error) {
	rows, err := db.sql.Query(
		`SELECT filename, stage, failed FROM stage_events WHERE run_id = ? ORDER BY rowid`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracedb: querying events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		var failed int
		if err := rows.Scan(&e.Filename, &e.Stage, &failed); err != nil {
			return nil, fmt.Errorf("tracedb: scanning event: %w", err)
		}
		e.Failed = failed != 0
		events = append(events, e)
	}
	return events, rows.Err()
}
