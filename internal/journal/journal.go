// Package journal persists finished sync runs in SQLite so run history
// survives daemon restarts. The orchestrator itself stays stateless; the
// daemon records results here after each run.
package journal

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nfsync/nfsync/internal/syncer"
	"github.com/nfsync/nfsync/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
    id          TEXT PRIMARY KEY,
    started_at  TEXT NOT NULL, -- RFC3339
    finished_at TEXT NOT NULL,
    total       INTEGER NOT NULL,
    completed   INTEGER NOT NULL,
    succeeded   INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    cancelled   INTEGER NOT NULL,
    success     INTEGER NOT NULL,
    message     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_run_errors (
    run_id   TEXT NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    local    TEXT NOT NULL,
    message  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON sync_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_errors_run ON sync_run_errors(run_id);
`

// RunRecord is one persisted run summary.
type RunRecord struct {
	ID         string `db:"id" json:"run_id"`
	StartedAt  string `db:"started_at" json:"started_at"`
	FinishedAt string `db:"finished_at" json:"finished_at"`
	Total      int    `db:"total" json:"total"`
	Completed  int    `db:"completed" json:"completed"`
	Succeeded  int    `db:"succeeded" json:"succeeded"`
	Failed     int    `db:"failed" json:"failed"`
	Cancelled  bool   `db:"cancelled" json:"cancelled"`
	Success    bool   `db:"success" json:"success"`
	Message    string `db:"message" json:"message"`
}

// ErrorRecord is one failed pair within a run, ordered by position.
type ErrorRecord struct {
	RunID    string `db:"run_id" json:"-"`
	Position int    `db:"position" json:"-"`
	Local    string `db:"local" json:"local"`
	Message  string `db:"message" json:"message"`
}

type Journal struct {
	db *sqlx.DB
}

// Open creates or opens the journal database.
func Open(dbPath string) (*Journal, error) {
	if err := utils.EnsureParent(dbPath); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	// single writer keeps WAL mode simple
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one finished run and its per-pair errors.
func (j *Journal) Record(res syncer.Result) error {
	tx, err := j.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sync_runs (id, started_at, finished_at, total, completed, succeeded, failed, cancelled, success, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID,
		res.StartedAt.UTC().Format(time.RFC3339),
		res.FinishedAt.UTC().Format(time.RFC3339),
		res.Total, res.Completed, res.Succeeded, res.Failed,
		res.Cancelled, res.Success, res.Message,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", res.RunID, err)
	}

	for i, pe := range res.Errors {
		if _, err := tx.Exec(
			`INSERT INTO sync_run_errors (run_id, position, local, message) VALUES (?, ?, ?, ?)`,
			res.RunID, i, pe.Local, pe.Message,
		); err != nil {
			return fmt.Errorf("record run error: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the latest runs, newest first.
func (j *Journal) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []RunRecord
	err := j.db.Select(&runs,
		`SELECT id, started_at, finished_at, total, completed, succeeded, failed, cancelled, success, message
		 FROM sync_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

// Errors returns the failed pairs of one run in processing order.
func (j *Journal) Errors(runID string) ([]ErrorRecord, error) {
	var errs []ErrorRecord
	err := j.db.Select(&errs,
		`SELECT run_id, position, local, message FROM sync_run_errors
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run errors: %w", err)
	}
	return errs, nil
}
