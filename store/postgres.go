package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    job_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    model TEXT,
    status TEXT NOT NULL DEFAULT 'running',
    total INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    succeeded INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    input_tokens BIGINT NOT NULL DEFAULT 0,
    output_tokens BIGINT NOT NULL DEFAULT 0,
    cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    error TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_outcomes (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    item_index INTEGER NOT NULL,
    succeeded BOOLEAN NOT NULL,
    payload_json TEXT,
    reason TEXT,
    PRIMARY KEY (run_id, item_index)
);
`

// postgresTimeout bounds every statement issued by the postgres store
const postgresTimeout = 30 * time.Second

// NewPostgresBundle creates a Bundle backed by a pgx connection pool
func NewPostgresBundle(ctx context.Context, dsn string) (*Bundle, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Bundle{
		Runs: &PostgresRunStore{pool: pool},
		closer: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

type PostgresRunStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresRunStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), postgresTimeout)
}

func (s *PostgresRunStore) CreateRun(jobName, kind, model string, total, workers int) (string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	id := generateID()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, job_name, kind, model, total, workers, started_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, jobName, kind, model, total, workers, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

func (s *PostgresRunStore) FinishRun(id string, summary RunSummary) error {
	ctx, cancel := s.ctx()
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, succeeded = $2, failed = $3, input_tokens = $4, output_tokens = $5, cost_usd = $6, error = $7, finished_at = $8 WHERE id = $9`,
		summary.Status, summary.Succeeded, summary.Failed, summary.InputTokens, summary.OutputTokens, summary.CostUSD, errPtr(summary.Error), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresRunStore) RecordOutcomes(runID string, outcomes []Outcome) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.getRun(ctx, runID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, o := range outcomes {
		batch.Queue(
			`INSERT INTO run_outcomes (run_id, item_index, succeeded, payload_json, reason) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (run_id, item_index) DO UPDATE SET succeeded = EXCLUDED.succeeded, payload_json = EXCLUDED.payload_json, reason = EXCLUDED.reason`,
			runID, o.Index, o.Succeeded, o.PayloadJSON, o.Reason,
		)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for _, o := range outcomes {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("record outcome %d: %w", o.Index, err)
			}
		}
		return results.Close()
	})
}

const pgRunColumns = `id, job_name, kind, COALESCE(model, ''), status, total, workers, succeeded, failed, input_tokens, output_tokens, cost_usd, started_at, finished_at, error`

func scanPgRun(row pgx.Row) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.JobName, &r.Kind, &r.Model, &r.Status, &r.Total, &r.Workers,
		&r.Succeeded, &r.Failed, &r.InputTokens, &r.OutputTokens, &r.CostUSD,
		&r.StartedAt, &r.FinishedAt, &r.Error); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresRunStore) getRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanPgRun(s.pool.QueryRow(ctx, `SELECT `+pgRunColumns+` FROM runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

func (s *PostgresRunStore) GetRun(id string) (*Run, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.getRun(ctx, id)
}

func (s *PostgresRunStore) ListRuns(limit, offset int) ([]Run, int, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+pgRunColumns+` FROM runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *r)
	}
	return runs, total, rows.Err()
}

func (s *PostgresRunStore) GetOutcomes(runID string) ([]Outcome, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.getRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT item_index, succeeded, COALESCE(payload_json, ''), COALESCE(reason, '') FROM run_outcomes WHERE run_id = $1 ORDER BY item_index`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.Index, &o.Succeeded, &o.PayloadJSON, &o.Reason); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
