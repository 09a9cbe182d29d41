package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/scraper"
	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeSchedule struct {
	games map[string][]string
	fail  map[string]error
}

func (f *fakeSchedule) ListGames(_ context.Context, date time.Time) ([]string, error) {
	key := date.Format(baseball.DateLayout)
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	return f.games[key], nil
}

type fakeGames struct {
	mu        sync.Mutex
	summaries map[string]baseball.GameSummary
	fail      map[string]error
	delay     map[string]time.Duration
}

func (f *fakeGames) GetSummary(ctx context.Context, number string) (baseball.GameSummary, string, error) {
	f.mu.Lock()
	d := f.delay[number]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return baseball.GameSummary{}, "", ctx.Err()
		}
	}
	if err, ok := f.fail[number]; ok {
		return baseball.GameSummary{}, "", err
	}
	s, ok := f.summaries[number]
	if !ok {
		return baseball.GameSummary{}, "", fmt.Errorf("no summary for %s", number)
	}
	return s, "<html>" + number + "</html>", nil
}

type fakePlays struct {
	mu    sync.Mutex
	logs  map[string]scraper.PlayLog
	fail  map[string]error
	calls []string
}

func (f *fakePlays) Crawl(_ context.Context, number string) (scraper.PlayLog, error) {
	f.mu.Lock()
	f.calls = append(f.calls, number)
	f.mu.Unlock()
	if err, ok := f.fail[number]; ok {
		return f.logs[number], err
	}
	return f.logs[number], nil
}

func (f *fakePlays) crawled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.calls)
	slices.Sort(out)
	return out
}

type fakeRoster struct {
	teams    map[string][]string
	profiles map[string]baseball.PlayerProfile
	fail     map[string]error

	mu   sync.Mutex
	gets []string
}

func (f *fakeRoster) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.gets...)
}

func (f *fakeRoster) ListTeamPlayers(_ context.Context, team string) ([]string, error) {
	if err, ok := f.fail[team]; ok {
		return nil, err
	}
	return f.teams[team], nil
}

func (f *fakeRoster) GetPlayer(_ context.Context, raw string) (baseball.PlayerProfile, error) {
	f.mu.Lock()
	f.gets = append(f.gets, raw)
	f.mu.Unlock()
	if err, ok := f.fail[raw]; ok {
		return baseball.PlayerProfile{}, err
	}
	p, ok := f.profiles[raw]
	if !ok {
		return baseball.PlayerProfile{}, errors.New("unknown player")
	}
	return p, nil
}

type appendCall struct {
	table string
	rows  [][]any
}

type fakeSink struct {
	mu    sync.Mutex
	calls []appendCall
	fail  map[string]error
}

func (f *fakeSink) Append(_ context.Context, schema warehouse.TableSchema, rows [][]any) error {
	if err, ok := f.fail[schema.Name]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, appendCall{table: schema.Name, rows: rows})
	return nil
}

func (f *fakeSink) tables() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.table
	}
	return out
}

func (f *fakeSink) rows(table string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]any
	for _, c := range f.calls {
		if c.table == table {
			out = append(out, c.rows...)
		}
	}
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	fail   error
}

func (f *fakeNotifier) Notify(_ context.Context, n baseball.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, n.Event)
	return f.fail
}

// column returns the value of name in every row of table.
func column(schema warehouse.TableSchema, rows [][]any, name string) []any {
	idx := slices.Index(schema.ColumnNames(), name)
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row[idx]
	}
	return out
}

func finished(id string, date time.Time) baseball.GameSummary {
	return baseball.GameSummary{
		GameID:       id,
		GameDate:     date,
		Status:       baseball.StatusFinish,
		Series:       baseball.SeriesPennant,
		HomeTeamName: baseball.Ptr("巨人"),
		AwayTeamName: baseball.Ptr("阪神"),
		HomeScore:    baseball.Ptr(3),
		AwayScore:    baseball.Ptr(1),
	}
}

// playLog builds a log with n plays and two pitches per play.
func playLog(id string, n int) scraper.PlayLog {
	var log scraper.PlayLog
	for i := range n {
		idx := fmt.Sprintf("01101%02d", i)
		log.Plays = append(log.Plays, baseball.PlayState{
			GameID: id, PageIndex: idx, Sequence: i + 1, Inning: 1, Half: baseball.HalfTop,
		})
		for j := range 2 {
			log.Pitches = append(log.Pitches, baseball.Pitch{
				GameID: id, PageIndex: idx, SequenceNumber: j + 1, PitchType: "ストレート", Result: "ボール",
			})
		}
		log.Tokens = append(log.Tokens, idx)
	}
	return log
}
