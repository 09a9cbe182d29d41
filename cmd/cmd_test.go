package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/api"
	"github.com/npblake/sponavi-crawler/internal/config"
	"github.com/npblake/sponavi-crawler/internal/orchestrator"
	"github.com/npblake/sponavi-crawler/internal/storage/memory"
	"github.com/npblake/sponavi-crawler/internal/store"
)

type fakeTrigger struct {
	ranges     [][2]time.Time
	playerRuns int
}

func (f *fakeTrigger) Run(_ context.Context, start, end time.Time) (orchestrator.Report, error) {
	f.ranges = append(f.ranges, [2]time.Time{start, end})
	return orchestrator.Report{FlowID: "f"}, nil
}

func (f *fakeTrigger) RunPlayers(context.Context) (orchestrator.Report, error) {
	f.playerRuns++
	return orchestrator.Report{FlowID: "f"}, nil
}

type fakeApp struct {
	trigger *fakeTrigger
	closed  bool
}

func (a *fakeApp) Close()                    { a.closed = true }
func (a *fakeApp) Logger() *zap.Logger       { return zap.NewNop() }
func (a *fakeApp) Trigger() api.Trigger      { return a.trigger }
func (a *fakeApp) Runs() store.RunRepository { return memory.NewRunStore() }

// execute runs the root command with a fake app and returns it with the
// config the factory received.
func execute(t *testing.T, args ...string) (*fakeApp, config.Config, error) {
	t.Helper()
	t.Setenv("SPONAVI_RUN_OUTPUT", "file")

	fake := &fakeApp{trigger: &fakeTrigger{}}
	var got config.Config
	orig := newApp
	newApp = func(_ context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		got = cfg
		return fake, nil
	}
	t.Cleanup(func() { newApp = orig })

	root := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return fake, got, err
}

func TestRunCommandScrapesRange(t *testing.T) {
	fake, cfg, err := execute(t, "run", "--start-date", "2021-09-04", "--end-date", "2021-09-05")
	require.NoError(t, err)

	require.Len(t, fake.trigger.ranges, 1)
	assert.Equal(t, time.Date(2021, 9, 4, 0, 0, 0, 0, time.UTC), fake.trigger.ranges[0][0])
	assert.Equal(t, time.Date(2021, 9, 5, 0, 0, 0, 0, time.UTC), fake.trigger.ranges[0][1])
	assert.Zero(t, fake.trigger.playerRuns)
	assert.Equal(t, config.OutputFile, cfg.Run.Output)
	assert.True(t, fake.closed)
}

func TestRunCommandSingleDayWithPlayers(t *testing.T) {
	fake, cfg, err := execute(t, "run", "--start-date", "2021-09-04", "--players", "--output", "upload")
	require.NoError(t, err)

	require.Len(t, fake.trigger.ranges, 1)
	assert.Equal(t, fake.trigger.ranges[0][0], fake.trigger.ranges[0][1])
	assert.Equal(t, 1, fake.trigger.playerRuns)
	assert.Equal(t, config.OutputUpload, cfg.Run.Output)
}

func TestRunCommandRequiresDates(t *testing.T) {
	fake, _, err := execute(t, "run")
	require.ErrorContains(t, err, "--start-date")
	assert.Empty(t, fake.trigger.ranges)
}

func TestRunCommandRejectsBadOutput(t *testing.T) {
	_, _, err := execute(t, "run", "--start-date", "2021-09-04", "--output", "stdout")
	require.ErrorContains(t, err, "run.output")
}

func TestPlayersCommand(t *testing.T) {
	fake, _, err := execute(t, "players")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.trigger.playerRuns)
	assert.Empty(t, fake.trigger.ranges)
}
