package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/npblake/sponavi-crawler/internal/store"
)

type queryExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunStore implements store.RunRepository using Postgres.
type RunStore struct {
	pool queryExecer
}

// NewRunStore creates a RunStore over an existing pool.
func NewRunStore(pool queryExecer) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &RunStore{pool: pool}, nil
}

// StartRun inserts a run in running status.
func (s *RunStore) StartRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO crawl_runs (flow_id, kind, start_date, end_date, started_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (flow_id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, query,
		run.FlowID, string(run.Kind), run.StartDate, run.EndDate, run.StartedAt, string(store.RunRunning))
	if err != nil {
		return fmt.Errorf("failed to insert run start: %w", err)
	}
	return nil
}

// CompleteRun marks a run as completed with a status, counts and optional error message.
func (s *RunStore) CompleteRun(
	ctx context.Context,
	flowID string,
	finishedAt time.Time,
	status store.RunStatus,
	counts store.Counts,
	errMsg *string,
) error {
	query := `
		UPDATE crawl_runs
		SET finished_at = $1, status = $2, days = $3, games = $4, failed_games = $5,
			plays = $6, pitches = $7, players = $8, error_message = $9
		WHERE flow_id = $10;
	`
	res, err := s.pool.Exec(ctx, query,
		finishedAt, string(status),
		counts.Days, counts.Games, counts.FailedGames, counts.Plays, counts.Pitches, counts.Players,
		errMsg, flowID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const runColumns = `flow_id, kind, start_date, end_date, started_at, finished_at, status,
	days, games, failed_games, plays, pitches, players, error_message`

// GetRun retrieves a single run by its flow id.
func (s *RunStore) GetRun(ctx context.Context, flowID string) (store.Run, error) {
	query := `SELECT ` + runColumns + ` FROM crawl_runs WHERE flow_id = $1;`
	run, err := scanRun(s.pool.QueryRow(ctx, query, flowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Run{}, store.ErrNotFound
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs newest first, with optional status filtering.
func (s *RunStore) ListRuns(ctx context.Context, status *store.RunStatus, limit, offset int) ([]store.Run, error) {
	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}
	query := `SELECT ` + runColumns + `
		FROM crawl_runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3;`
	rows, err := s.pool.Query(ctx, query, statusArg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []store.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (store.Run, error) {
	var (
		run          store.Run
		kind, status string
	)
	err := row.Scan(
		&run.FlowID,
		&kind,
		&run.StartDate,
		&run.EndDate,
		&run.StartedAt,
		&run.FinishedAt,
		&status,
		&run.Counts.Days,
		&run.Counts.Games,
		&run.Counts.FailedGames,
		&run.Counts.Plays,
		&run.Counts.Pitches,
		&run.Counts.Players,
		&run.ErrorMessage,
	)
	if err != nil {
		return store.Run{}, err //nolint:wrapcheck
	}
	run.Kind = store.RunKind(kind)
	run.Status = store.RunStatus(status)
	return run, nil
}
