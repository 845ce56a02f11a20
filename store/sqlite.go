package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    job_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    model TEXT,
    status TEXT DEFAULT 'running',
    total INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    succeeded INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    input_tokens INTEGER DEFAULT 0,
    output_tokens INTEGER DEFAULT 0,
    cost_usd REAL DEFAULT 0,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    error TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_outcomes (
    run_id TEXT NOT NULL REFERENCES runs(id),
    item_index INTEGER NOT NULL,
    succeeded INTEGER NOT NULL,
    payload_json TEXT,
    reason TEXT,
    PRIMARY KEY (run_id, item_index)
);
`

// NewSQLiteBundle creates a Bundle backed by SQLite at the given path
func NewSQLiteBundle(dbPath string) (*Bundle, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Bundle{
		Runs:   &SQLiteRunStore{db: db},
		closer: db.Close,
	}, nil
}

type SQLiteRunStore struct {
	db *sql.DB
}

func (s *SQLiteRunStore) CreateRun(jobName, kind, model string, total, workers int) (string, error) {
	id := generateID()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, job_name, kind, model, total, workers, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, jobName, kind, model, total, workers, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

func (s *SQLiteRunStore) FinishRun(id string, summary RunSummary) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, succeeded = ?, failed = ?, input_tokens = ?, output_tokens = ?, cost_usd = ?, error = ?, finished_at = ? WHERE id = ?`,
		summary.Status, summary.Succeeded, summary.Failed, summary.InputTokens, summary.OutputTokens, summary.CostUSD, errPtr(summary.Error), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteRunStore) RecordOutcomes(runID string, outcomes []Outcome) error {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO run_outcomes (run_id, item_index, succeeded, payload_json, reason) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range outcomes {
		succeeded := 0
		if o.Succeeded {
			succeeded = 1
		}
		if _, err := stmt.Exec(runID, o.Index, succeeded, o.PayloadJSON, o.Reason); err != nil {
			return fmt.Errorf("record outcome %d: %w", o.Index, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, job_name, kind, model, status, total, workers, succeeded, failed, input_tokens, output_tokens, cost_usd, started_at, finished_at, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var model sql.NullString
	var finishedAt sql.NullTime
	var errMsg sql.NullString

	if err := row.Scan(&r.ID, &r.JobName, &r.Kind, &model, &r.Status, &r.Total, &r.Workers,
		&r.Succeeded, &r.Failed, &r.InputTokens, &r.OutputTokens, &r.CostUSD,
		&r.StartedAt, &finishedAt, &errMsg); err != nil {
		return nil, err
	}
	if model.Valid {
		r.Model = model.String
	}
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Time
	}
	if errMsg.Valid {
		r.Error = &errMsg.String
	}
	return &r, nil
}

func (s *SQLiteRunStore) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

func (s *SQLiteRunStore) ListRuns(limit, offset int) ([]Run, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *r)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteRunStore) GetOutcomes(runID string) ([]Outcome, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT item_index, succeeded, payload_json, reason FROM run_outcomes WHERE run_id = ? ORDER BY item_index`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		var o Outcome
		var succeeded int
		var payload, reason sql.NullString
		if err := rows.Scan(&o.Index, &succeeded, &payload, &reason); err != nil {
			return nil, err
		}
		o.Succeeded = succeeded == 1
		o.PayloadJSON = payload.String
		o.Reason = reason.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
