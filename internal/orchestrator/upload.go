package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/metrics"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// uploadDay assembles the day's records and appends each non-empty table once.
// Assembly of every table happens before the first append so a schema mismatch
// uploads nothing.
func (r *Runner) uploadDay(ctx context.Context, batch dayBatch, stamp warehouse.Stamp, logger *zap.Logger) error {
	games, err := warehouse.Assemble(r.cfg.Schemas[warehouse.TableGame], batch.summaries, stamp)
	if err != nil {
		return fmt.Errorf("assemble games: %w", err)
	}
	plays, err := warehouse.Assemble(r.cfg.Schemas[warehouse.TableScore], batch.plays, stamp)
	if err != nil {
		return fmt.Errorf("assemble plays: %w", err)
	}
	pitches, err := warehouse.Assemble(r.cfg.Schemas[warehouse.TablePitch], batch.pitches, stamp)
	if err != nil {
		return fmt.Errorf("assemble pitches: %w", err)
	}

	for _, t := range []struct {
		name string
		rows [][]any
	}{
		{warehouse.TableGame, games},
		{warehouse.TableScore, plays},
		{warehouse.TablePitch, pitches},
	} {
		if err := r.appendTable(ctx, t.name, t.rows, logger); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) appendTable(ctx context.Context, name string, rows [][]any, logger *zap.Logger) error {
	if len(rows) == 0 {
		return nil
	}
	schema := r.cfg.Schemas[name]
	if err := r.deps.Sink.Append(ctx, schema, rows); err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	metrics.ObserveUpload(name, len(rows))
	logger.Info("uploaded table", zap.String("table", schema.Table), zap.Int("rows", len(rows)))
	return nil
}
