// Package cmd defines the CLI commands of the sponavi-crawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/api"
	"github.com/npblake/sponavi-crawler/internal/app"
	"github.com/npblake/sponavi-crawler/internal/config"
	"github.com/npblake/sponavi-crawler/internal/logging"
	"github.com/npblake/sponavi-crawler/internal/store"
)

var cfgFile string

// App is what the subcommands need from the service container.
type App interface {
	Close()
	Logger() *zap.Logger
	Trigger() api.Trigger
	Runs() store.RunRepository
}

type appAdapter struct {
	*app.App
}

func (a appAdapter) Trigger() api.Trigger {
	return a.Runner()
}

// newApp is the application factory. Tests replace it with a fake.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return appAdapter{App: a}, nil
}

// runSettings is the resolved configuration a subcommand acts on.
type runSettings struct {
	cfg config.Config
	app App
}

type settingsKeyType string

const settingsKey settingsKeyType = "settings"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sponavi-crawler",
		Short: "Scrapes NPB game, play-by-play and player pages into the warehouse.",
		Long: `sponavi-crawler reads the baseball sports portal day by day, extracts game
summaries, every plate appearance and every pitch, and appends them to the lake
tables. Player profiles are scraped separately from the team member lists.`,
		SilenceUsage: true,

		// Loads config, applies flag overrides and builds the services before
		// the subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := applyRunFlags(cmd, &cfg); err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), settingsKey, &runSettings{cfg: cfg, app: appInstance})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if s, ok := cmd.Context().Value(settingsKey).(*runSettings); ok && s.app != nil {
				s.app.Close()
				_ = s.app.Logger().Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newPlayersCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func resolveSettings(ctx context.Context) (*runSettings, error) {
	s, ok := ctx.Value(settingsKey).(*runSettings)
	if !ok || s == nil || s.app == nil {
		return nil, errors.New("application services not initialized")
	}
	return s, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
