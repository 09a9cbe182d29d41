package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that the requested run does not exist.
var ErrNotFound = errors.New("run record not found")

// RunStatus mirrors the crawl_runs status column.
type RunStatus string

// Run statuses persisted in crawl_runs.status.
const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// RunKind distinguishes score runs from player runs.
type RunKind string

// Run kinds.
const (
	KindScores  RunKind = "scores"
	KindPlayers RunKind = "players"
)

// Counts are the totals a finished run reports.
type Counts struct {
	Days        int `json:"days"`
	Games       int `json:"games"`
	FailedGames int `json:"failed_games"`
	Plays       int `json:"plays"`
	Pitches     int `json:"pitches"`
	Players     int `json:"players"`
}

// Run models one row of crawl_runs.
type Run struct {
	// FlowID is the run identifier stamped on every uploaded row.
	FlowID string
	Kind   RunKind
	// StartDate and EndDate are the scraped range; empty for player runs.
	StartDate string
	EndDate   string
	StartedAt time.Time
	// FinishedAt is nil until the run is marked success/error.
	FinishedAt   *time.Time
	Status       RunStatus
	Counts       Counts
	ErrorMessage *string
}

// RunRepository persists the run ledger.
type RunRepository interface {
	// StartRun records a run as running.
	StartRun(ctx context.Context, run Run) error
	// CompleteRun marks the run finished with the provided status, counts and error.
	CompleteRun(
		ctx context.Context,
		flowID string,
		finishedAt time.Time,
		status RunStatus,
		counts Counts,
		errMsg *string,
	) error
	// GetRun loads a single run or returns ErrNotFound.
	GetRun(ctx context.Context, flowID string) (Run, error)
	// ListRuns returns runs, newest first, filtered by optional status.
	ListRuns(ctx context.Context, status *RunStatus, limit, offset int) ([]Run, error)
}
