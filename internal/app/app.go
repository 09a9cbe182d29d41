// Package app initializes and holds long-lived application services, acting as
// a dependency injection container for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/clock/system"
	"github.com/npblake/sponavi-crawler/internal/config"
	collyfetcher "github.com/npblake/sponavi-crawler/internal/fetcher/colly"
	"github.com/npblake/sponavi-crawler/internal/id/uuid"
	"github.com/npblake/sponavi-crawler/internal/logging"
	"github.com/npblake/sponavi-crawler/internal/orchestrator"
	"github.com/npblake/sponavi-crawler/internal/policy/ratelimit"
	mempublisher "github.com/npblake/sponavi-crawler/internal/publisher/memory"
	pspublisher "github.com/npblake/sponavi-crawler/internal/publisher/pubsub"
	"github.com/npblake/sponavi-crawler/internal/scraper"
	"github.com/npblake/sponavi-crawler/internal/storage/gcs"
	"github.com/npblake/sponavi-crawler/internal/storage/local"
	memstorage "github.com/npblake/sponavi-crawler/internal/storage/memory"
	"github.com/npblake/sponavi-crawler/internal/storage/postgres"
	"github.com/npblake/sponavi-crawler/internal/storage/tsv"
	"github.com/npblake/sponavi-crawler/internal/store"
	"github.com/npblake/sponavi-crawler/internal/telemetry"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// Object prefixes under storage.prefix.
const (
	tablesDir  = "tables"
	archiveDir = "html"
)

// App holds the shared services of one process.
type App struct {
	logger  *zap.Logger
	runner  *orchestrator.Runner
	runs    store.RunRepository
	closers []func()
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Runner returns the scrape orchestrator.
func (a *App) Runner() *orchestrator.Runner {
	return a.runner
}

// Runs returns the run ledger.
func (a *App) Runs() store.RunRepository {
	return a.runs
}

// New builds every service from cfg. It fails fast when a configured backend
// cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{logger: logger}
	logger.Info("initializing application services",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("output", cfg.Run.Output),
	)

	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	tp, err := telemetry.InitTracerProvider(ctx, telemetry.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			a.logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	})

	blobs, err := a.blobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		pool, err = postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.DB.DSN,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: time.Duration(cfg.DB.MaxConnLifetimeMinutes) * time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
	}

	sink, err := newSink(cfg, blobs, pool, logger)
	if err != nil {
		return nil, err
	}

	if pool != nil {
		runs, err := postgres.NewRunStore(pool)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize run ledger: %w", err)
		}
		a.runs = runs
	} else {
		a.runs = memstorage.NewRunStore()
	}

	notifier, err := a.notifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{Interval: cfg.Interval()})
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.RequestTimeout(),
	}, limiter, logger)

	site := scraper.Site{Domain: cfg.Site.Domain, League: cfg.Site.League, StartIndex: cfg.Site.StartIndex}
	calendar, err := scraper.NewCalendar(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to build season calendar: %w", err)
	}
	teams := scraper.NewTeamRegistry(cfg.LeagueTeams())

	deps := orchestrator.Deps{
		Schedule: scraper.NewScheduleCrawler(site, fetcher, logger),
		Games:    scraper.NewGameCrawler(site, fetcher, calendar, teams, logger),
		Plays:    scraper.NewPlayByPlayCrawler(site, fetcher, cfg.Crawler.MaxPagesPerGame, logger),
		Roster:   scraper.NewRosterCrawler(site, fetcher, logger),
		Sink:     sink,
		Notifier: notifier,
		Clock:    system.New(),
		Runs:     a.runs,
	}
	if cfg.Storage.ArchiveHTML {
		deps.Archive = blobs
	}

	siteTeamIDs := make([]string, 0, len(teams.Teams()))
	for _, t := range teams.Teams() {
		siteTeamIDs = append(siteTeamIDs, t.SiteTeamID)
	}
	runner, err := orchestrator.New(deps, orchestrator.Config{
		Concurrency:   cfg.Crawler.Concurrency,
		Schemas:       cfg.Tables,
		SiteTeamIDs:   siteTeamIDs,
		ArchivePrefix: path.Join(cfg.Storage.Prefix, archiveDir),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize runner: %w", err)
	}
	a.runner = runner

	ok = true
	logger.Info("application services initialized")
	return a, nil
}

func (a *App) blobStore(ctx context.Context, cfg config.Config) (baseball.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendGCS:
		a.logger.Info("using GCS blob store", zap.String("bucket", cfg.Storage.GCSBucket))
		bs, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := bs.Close(); err != nil {
				a.logger.Warn("error closing GCS client", zap.Error(err))
			}
		})
		return bs, nil
	case config.BackendLocal:
		bs, err := local.New(local.Config{BaseDir: cfg.Storage.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return bs, nil
	default:
		return memstorage.NewBlobStore(), nil
	}
}

func (a *App) notifier(ctx context.Context, cfg config.Config) (baseball.Notifier, error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		a.logger.Info("pubsub not configured; notifications kept in memory")
		return mempublisher.New(), nil
	}
	a.logger.Info("connecting to pubsub", zap.String("topic", cfg.PubSub.TopicName))
	pub, err := pspublisher.Open(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, uuid.New(),
		logging.Named(a.logger, "notify"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := pub.Close(); err != nil {
			a.logger.Warn("error closing pubsub publisher", zap.Error(err))
		}
	})
	return pub, nil
}

func newSink(cfg config.Config, blobs baseball.BlobStore, pool *pgxpool.Pool, logger *zap.Logger) (warehouse.Sink, error) {
	if cfg.Run.Output == config.OutputFile {
		sink, err := tsv.NewSink(blobs, path.Join(cfg.Storage.Prefix, tablesDir), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file sink: %w", err)
		}
		return sink, nil
	}
	if pool == nil {
		return nil, errors.New("run.output is upload but db.dsn is not set")
	}
	sink, err := postgres.NewSinkWithPool(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize warehouse sink: %w", err)
	}
	return sink, nil
}

// Close shuts down services in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
