// Package orchestrator drives a scrape over a date range: it lists each day's
// games, crawls them on a bounded worker pool and appends one batch per table
// per day to the warehouse sink.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/scraper"
	"github.com/npblake/sponavi-crawler/internal/store"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// ScheduleLister lists a day's game numbers in page order.
type ScheduleLister interface {
	ListGames(ctx context.Context, date time.Time) ([]string, error)
}

// SummaryReader extracts a game summary and returns the raw page with it.
type SummaryReader interface {
	GetSummary(ctx context.Context, gameNumber string) (baseball.GameSummary, string, error)
}

// PlayCrawler walks a finished game's scoring pages.
type PlayCrawler interface {
	Crawl(ctx context.Context, gameNumber string) (scraper.PlayLog, error)
}

// RosterReader lists team players and reads their profiles.
type RosterReader interface {
	ListTeamPlayers(ctx context.Context, siteTeamID string) ([]string, error)
	GetPlayer(ctx context.Context, rawPlayerID string) (baseball.PlayerProfile, error)
}

// Config controls Runner behavior.
type Config struct {
	// Concurrency is the number of games crawled at once within a day.
	Concurrency int
	// Schemas are the destination tables keyed by logical name.
	Schemas map[string]warehouse.TableSchema
	// SiteTeamIDs are the portal team ids whose rosters RunPlayers reads.
	SiteTeamIDs []string
	// ArchivePrefix is prepended to archived game page paths.
	ArchivePrefix string
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Schedule ScheduleLister
	Games    SummaryReader
	Plays    PlayCrawler
	Roster   RosterReader
	Sink     warehouse.Sink
	// Archive stores raw game pages when set.
	Archive  baseball.BlobStore
	Notifier baseball.Notifier
	Clock    baseball.Clock
	// Runs records the run ledger when set.
	Runs store.RunRepository
}

// Runner executes scrape runs.
type Runner struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

// New constructs a Runner.
func New(deps Deps, cfg Config, logger *zap.Logger) (*Runner, error) {
	if deps.Sink == nil {
		return nil, errors.New("orchestrator: sink is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("orchestrator: clock is required")
	}
	for _, name := range []string{warehouse.TableGame, warehouse.TableScore, warehouse.TablePitch, warehouse.TablePlayer} {
		if _, ok := cfg.Schemas[name]; !ok {
			return nil, fmt.Errorf("orchestrator: schema %s is required", name)
		}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{deps: deps, cfg: cfg, logger: logger.Named("orchestrator")}, nil
}

// Report summarizes a run.
type Report struct {
	FlowID        string
	Days          int
	EmptyDays     int
	FailedDays    int
	// Games counts finished and cancelled games whose records were kept.
	Games         int
	FailedGames   int
	// SkippedGames counts games not yet final when crawled.
	SkippedGames  int
	Plays         int
	Pitches       int
	Players       int
	FailedPlayers int
}

// Run scrapes every date from start to end inclusive in ascending order. Day
// and game failures are logged and counted; only cancellation stops the run.
func (r *Runner) Run(ctx context.Context, start, end time.Time) (Report, error) {
	if r.deps.Schedule == nil || r.deps.Games == nil || r.deps.Plays == nil {
		return Report{}, errors.New("orchestrator: game crawlers are not configured")
	}
	start, end = day(start), day(end)
	if end.Before(start) {
		return Report{}, fmt.Errorf("end date %s is before start date %s",
			end.Format(baseball.DateLayout), start.Format(baseball.DateLayout))
	}

	stamp := r.stamp()
	ctx, span := tracer().Start(ctx, "orchestrator.Run", trace.WithAttributes(
		attribute.String("flow_id", stamp.FlowID),
		attribute.String("start_date", start.Format(baseball.DateLayout)),
		attribute.String("end_date", end.Format(baseball.DateLayout)),
	))
	defer span.End()

	report := Report{FlowID: stamp.FlowID}
	logger := r.logger.With(zap.String("flow_id", stamp.FlowID))
	r.startRun(ctx, store.Run{
		FlowID:    stamp.FlowID,
		Kind:      store.KindScores,
		StartDate: start.Format(baseball.DateLayout),
		EndDate:   end.Format(baseball.DateLayout),
		StartedAt: stamp.ExecDatetime,
	}, logger)
	r.notify(ctx, baseball.EventRunStarted, "score scraping started", map[string]any{
		"start_date": start.Format(baseball.DateLayout),
		"end_date":   end.Format(baseball.DateLayout),
	})
	logger.Info("run started",
		zap.String("start_date", start.Format(baseball.DateLayout)),
		zap.String("end_date", end.Format(baseball.DateLayout)),
	)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("run canceled before %s: %w", d.Format(baseball.DateLayout), err)
			detached := context.WithoutCancel(ctx)
			r.completeRun(detached, report, err, logger)
			r.notify(detached, baseball.EventRunFailed, "score scraping canceled", reportFields(report))
			return report, err
		}
		r.runDay(ctx, d, stamp, &report, logger)
	}

	logger.Info("run finished",
		zap.Int("days", report.Days),
		zap.Int("games", report.Games),
		zap.Int("failed_games", report.FailedGames),
		zap.Int("skipped_games", report.SkippedGames),
		zap.Int("failed_days", report.FailedDays),
	)
	r.completeRun(ctx, report, nil, logger)
	r.notify(ctx, baseball.EventRunFinished, "score scraping finished", reportFields(report))
	return report, nil
}

func tracer() trace.Tracer {
	return otel.Tracer("github.com/npblake/sponavi-crawler/internal/orchestrator")
}

func (r *Runner) stamp() warehouse.Stamp {
	now := r.deps.Clock.Now()
	return warehouse.Stamp{FlowID: warehouse.FlowID(now), ExecDatetime: now}
}

func (r *Runner) notify(ctx context.Context, event, message string, fields map[string]any) {
	if r.deps.Notifier == nil {
		return
	}
	n := baseball.Notification{
		Event:   event,
		Message: message,
		Fields:  fields,
		SentAt:  r.deps.Clock.Now(),
	}
	if err := r.deps.Notifier.Notify(ctx, n); err != nil {
		r.logger.Warn("notification failed", zap.String("event", event), zap.Error(err))
	}
}

func (r *Runner) startRun(ctx context.Context, run store.Run, logger *zap.Logger) {
	if r.deps.Runs == nil {
		return
	}
	if err := r.deps.Runs.StartRun(ctx, run); err != nil {
		logger.Warn("record run start failed", zap.Error(err))
	}
}

func (r *Runner) completeRun(ctx context.Context, rep Report, runErr error, logger *zap.Logger) {
	if r.deps.Runs == nil {
		return
	}
	status := store.RunSuccess
	var msg *string
	if runErr != nil {
		status = store.RunError
		msg = baseball.Ptr(runErr.Error())
	}
	counts := store.Counts{
		Days:        rep.Days,
		Games:       rep.Games,
		FailedGames: rep.FailedGames,
		Plays:       rep.Plays,
		Pitches:     rep.Pitches,
		Players:     rep.Players,
	}
	if err := r.deps.Runs.CompleteRun(ctx, rep.FlowID, r.deps.Clock.Now(), status, counts, msg); err != nil {
		logger.Warn("record run completion failed", zap.Error(err))
	}
}

func reportFields(rep Report) map[string]any {
	return map[string]any{
		"flow_id":        rep.FlowID,
		"days":           rep.Days,
		"empty_days":     rep.EmptyDays,
		"failed_days":    rep.FailedDays,
		"games":          rep.Games,
		"failed_games":   rep.FailedGames,
		"skipped_games":  rep.SkippedGames,
		"plays":          rep.Plays,
		"pitches":        rep.Pitches,
		"players":        rep.Players,
		"failed_players": rep.FailedPlayers,
	}
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
