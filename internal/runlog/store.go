// Package runlog persists launch history in SQLite: which configuration was
// launched, when, and how the trainer process exited. The store is exposed
// to plans as the run_log asset.
package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run statuses recorded in the store.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    checkpoint_name TEXT NOT NULL,
    dataset_name    TEXT NOT NULL,
    command         TEXT NOT NULL,
    work_dir        TEXT NOT NULL,
    status          TEXT NOT NULL,
    exit_code       INTEGER NOT NULL DEFAULT -1,
    started_at      TEXT NOT NULL,
    finished_at     TEXT NOT NULL DEFAULT ''
);
`

const runsIndex = `
CREATE INDEX IF NOT EXISTS idx_runs_checkpoint
ON runs(checkpoint_name, started_at);
`

// Run is one recorded trainer launch.
type Run struct {
	ID             int64
	CheckpointName string
	DatasetName    string
	Command        []string
	WorkDir        string
	Status         string
	ExitCode       int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Store records trainer launches in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the runs table and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(runsSchema); err != nil {
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}
	if _, err := db.Exec(runsIndex); err != nil {
		return nil, fmt.Errorf("failed to create runs index: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart inserts a new run in the running state and returns its ID.
func (s *Store) RecordStart(run Run) (int64, error) {
	command, err := json.Marshal(run.Command)
	if err != nil {
		return 0, fmt.Errorf("failed to encode run command: %w", err)
	}
	res, err := s.db.Exec(`
		INSERT INTO runs
		(checkpoint_name, dataset_name, command, work_dir, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.CheckpointName,
		run.DatasetName,
		string(command),
		run.WorkDir,
		StatusRunning,
		run.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run start: %w", err)
	}
	return res.LastInsertId()
}

// RecordFinish marks a run as finished with the trainer's exit code.
func (s *Store) RecordFinish(id int64, exitCode int, finishedAt time.Time) error {
	status := StatusSucceeded
	if exitCode != 0 {
		status = StatusFailed
	}
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, exit_code = ?, finished_at = ?
		WHERE id = ?`,
		status,
		exitCode,
		finishedAt.UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, checkpoint_name, dataset_name, command, work_dir,
		       status, exit_code, started_at, finished_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var command, startedAt, finishedAt string
		if err := rows.Scan(&r.ID, &r.CheckpointName, &r.DatasetName, &command,
			&r.WorkDir, &r.Status, &r.ExitCode, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if command != "" {
			if err := json.Unmarshal([]byte(command), &r.Command); err != nil {
				return nil, fmt.Errorf("failed to decode run command: %w", err)
			}
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if finishedAt != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
