package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS topsis_runs (
	run_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	input_file   TEXT NOT NULL,
	result_file  TEXT NOT NULL,
	email        TEXT NOT NULL,
	weights      TEXT NOT NULL,
	impacts      TEXT NOT NULL,
	total_rows   INTEGER NOT NULL,
	email_status TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS topsis_runs_email_idx ON topsis_runs (email, created_at DESC);`

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const runColumns = `run_id, input_file, result_file, email, weights, impacts,
	total_rows, email_status, created_at`

// CreateRun inserts run, assigning an ID if it has none.
func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO topsis_runs (run_id, input_file, result_file, email, weights, impacts,
			total_rows, email_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		run.ID, run.InputFile, run.ResultFile, run.Email, run.Weights, run.Impacts,
		run.TotalRows, run.EmailStatus,
	).Scan(&run.CreatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM topsis_runs WHERE run_id = $1`, id)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM topsis_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Email != "" {
		n++
		query += fmt.Sprintf(" AND email = $%d", n)
		args = append(args, filter.Email)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	err := row.Scan(
		&r.ID, &r.InputFile, &r.ResultFile, &r.Email, &r.Weights, &r.Impacts,
		&r.TotalRows, &r.EmailStatus, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
