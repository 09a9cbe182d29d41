package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/metrics"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// Day outcomes recorded on the days metric.
const (
	dayUploaded = "uploaded"
	dayEmpty    = "empty"
	dayFailed   = "failed"
)

// gameBatch is the isolated output of one game. A failed game contributes no
// batch at all.
type gameBatch struct {
	number  string
	summary *baseball.GameSummary
	plays   []baseball.PlayState
	pitches []baseball.Pitch
	err     error
}

// dayBatch merges the game batches of one day in schedule order.
type dayBatch struct {
	summaries []baseball.GameSummary
	plays     []baseball.PlayState
	pitches   []baseball.Pitch
}

func (b dayBatch) empty() bool {
	return len(b.summaries) == 0 && len(b.plays) == 0 && len(b.pitches) == 0
}

func (r *Runner) runDay(ctx context.Context, date time.Time, stamp warehouse.Stamp, report *Report, logger *zap.Logger) {
	logger = logger.With(zap.String("date", date.Format(baseball.DateLayout)))
	report.Days++

	games, err := r.deps.Schedule.ListGames(ctx, date)
	if err != nil {
		report.FailedDays++
		metrics.ObserveDay(dayFailed)
		logger.Error("schedule failed; skipping day", zap.Error(err))
		return
	}
	if len(games) == 0 {
		report.EmptyDays++
		metrics.ObserveDay(dayEmpty)
		logger.Info("no games scheduled")
		return
	}
	logger.Info("processing day", zap.Int("games", len(games)))

	batches := r.crawlGames(ctx, date, games, stamp, logger)
	var merged dayBatch
	for _, b := range batches {
		if b.err != nil {
			report.FailedGames++
			continue
		}
		if b.summary == nil {
			report.SkippedGames++
			continue
		}
		report.Games++
		merged.summaries = append(merged.summaries, *b.summary)
		merged.plays = append(merged.plays, b.plays...)
		merged.pitches = append(merged.pitches, b.pitches...)
	}
	report.Plays += len(merged.plays)
	report.Pitches += len(merged.pitches)

	if merged.empty() {
		report.EmptyDays++
		metrics.ObserveDay(dayEmpty)
		logger.Info("no records to upload")
		return
	}
	if err := r.uploadDay(ctx, merged, stamp, logger); err != nil {
		report.FailedDays++
		metrics.ObserveDay(dayFailed)
		logger.Error("upload failed", zap.Error(err))
		return
	}
	metrics.ObserveDay(dayUploaded)
}

// crawlGames processes the day's games on a pool of workers. Results are
// returned in schedule order regardless of completion order.
func (r *Runner) crawlGames(
	ctx context.Context,
	date time.Time,
	games []string,
	stamp warehouse.Stamp,
	logger *zap.Logger,
) []gameBatch {
	batches := make([]gameBatch, len(games))
	work := make(chan int)

	var wg sync.WaitGroup
	for range min(r.cfg.Concurrency, len(games)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.IncActiveWorkers()
			defer metrics.DecActiveWorkers()
			for i := range work {
				batches[i] = r.crawlGame(ctx, date, games[i], stamp, logger)
			}
		}()
	}
	for i := range games {
		work <- i
	}
	close(work)
	wg.Wait()
	return batches
}

func (r *Runner) crawlGame(
	ctx context.Context,
	date time.Time,
	number string,
	stamp warehouse.Stamp,
	logger *zap.Logger,
) gameBatch {
	logger = logger.With(zap.String("game", number))
	batch := gameBatch{number: number}
	ctx, span := tracer().Start(ctx, "orchestrator.crawlGame", trace.WithAttributes(attribute.String("game", number)))
	defer span.End()

	summary, html, err := r.deps.Games.GetSummary(ctx, number)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary failed")
		metrics.ObserveGame("failed")
		logger.Error("game summary failed; dropping game", zap.Error(err))
		return gameBatch{number: number, err: err}
	}
	logger = logger.With(zap.String("game_id", summary.GameID), zap.String("status", string(summary.Status)))
	span.SetAttributes(attribute.String("game_status", string(summary.Status)))

	switch summary.Status {
	case baseball.StatusFinish:
		log, err := r.deps.Plays.Crawl(ctx, number)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "play-by-play failed")
			metrics.ObserveGame("failed")
			logger.Error("play-by-play failed; dropping game",
				zap.Int("discarded_plays", len(log.Plays)),
				zap.Error(err),
			)
			return gameBatch{number: number, err: err}
		}
		batch.plays, batch.pitches = log.Plays, log.Pitches
		batch.summary = &summary
		metrics.ObserveRecords("play", len(log.Plays))
		metrics.ObserveRecords("pitch", len(log.Pitches))
	case baseball.StatusCancel:
		batch.summary = &summary
	default:
		metrics.ObserveGame(string(summary.Status))
		logger.Info("game not final; skipping")
		return batch
	}

	metrics.ObserveGame(string(summary.Status))
	r.archive(ctx, date, number, summary.Status, html, stamp, logger)
	logger.Info("game processed", zap.Int("plays", len(batch.plays)), zap.Int("pitches", len(batch.pitches)))
	return batch
}

// archive stores the raw game page. Failures are logged and never affect the
// game's records.
func (r *Runner) archive(
	ctx context.Context,
	date time.Time,
	number string,
	status baseball.GameStatus,
	html string,
	stamp warehouse.Stamp,
	logger *zap.Logger,
) {
	if r.deps.Archive == nil {
		return
	}
	path := ArchivePath(r.cfg.ArchivePrefix, date, number, status, stamp.FlowID)
	uri, err := r.deps.Archive.PutObject(ctx, path, "text/html; charset=utf-8", strings.NewReader(html))
	if err != nil {
		logger.Warn("archive game page failed", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("archived game page", zap.String("uri", uri))
}

// ArchivePath names an archived game page "{date}_g{number}_{status}_{flow}.html"
// under prefix.
func ArchivePath(prefix string, date time.Time, number string, status baseball.GameStatus, flowID string) string {
	name := fmt.Sprintf("%s_g%s_%s_%s.html", date.Format(baseball.DateLayout), number, status, flowID)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
