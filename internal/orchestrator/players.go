package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/metrics"
	"github.com/npblake/sponavi-crawler/internal/store"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// RunPlayers reads every configured team's roster and appends all profiles to
// the player table in one batch. Team and player failures are logged and
// skipped. A player listed more than once is read and written once.
func (r *Runner) RunPlayers(ctx context.Context) (Report, error) {
	if r.deps.Roster == nil {
		return Report{}, errors.New("orchestrator: roster crawler is not configured")
	}
	stamp := r.stamp()
	report := Report{FlowID: stamp.FlowID}
	logger := r.logger.With(zap.String("flow_id", stamp.FlowID))
	r.startRun(ctx, store.Run{FlowID: stamp.FlowID, Kind: store.KindPlayers, StartedAt: stamp.ExecDatetime}, logger)
	r.notify(ctx, baseball.EventRunStarted, "player scraping started", map[string]any{
		"teams": len(r.cfg.SiteTeamIDs),
	})

	var profiles []baseball.PlayerProfile
	seen := make(map[string]struct{})
	for _, team := range r.cfg.SiteTeamIDs {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("player run canceled: %w", err)
			detached := context.WithoutCancel(ctx)
			r.completeRun(detached, report, err, logger)
			r.notify(detached, baseball.EventRunFailed, "player scraping canceled", reportFields(report))
			return report, err
		}
		ids, err := r.deps.Roster.ListTeamPlayers(ctx, team)
		if err != nil {
			logger.Error("member list failed; skipping team", zap.String("team", team), zap.Error(err))
			continue
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				logger.Debug("player already read; skipping", zap.String("team", team), zap.String("player", id))
				continue
			}
			seen[id] = struct{}{}
			profile, err := r.deps.Roster.GetPlayer(ctx, id)
			if err != nil {
				report.FailedPlayers++
				logger.Warn("player failed; skipping", zap.String("player", id), zap.Error(err))
				continue
			}
			profiles = append(profiles, profile)
		}
		logger.Info("team roster read", zap.String("team", team), zap.Int("players", len(ids)))
	}
	report.Players = len(profiles)
	metrics.ObserveRecords("player", len(profiles))

	schema := r.cfg.Schemas[warehouse.TablePlayer]
	rows, err := warehouse.Assemble(schema, profiles, stamp)
	if err != nil {
		err = fmt.Errorf("assemble players: %w", err)
		r.completeRun(ctx, report, err, logger)
		r.notify(ctx, baseball.EventRunFailed, "player scraping failed", reportFields(report))
		return report, err
	}
	if err := r.appendTable(ctx, warehouse.TablePlayer, rows, logger); err != nil {
		r.completeRun(ctx, report, err, logger)
		r.notify(ctx, baseball.EventRunFailed, "player scraping failed", reportFields(report))
		return report, err
	}
	r.completeRun(ctx, report, nil, logger)
	r.notify(ctx, baseball.EventRunFinished, "player scraping finished", reportFields(report))
	return report, nil
}
