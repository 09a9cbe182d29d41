package scraper

import (
	"fmt"
	"sort"
	"time"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/config"
)

type seriesWindow struct {
	series   baseball.Series
	from, to time.Time
}

// Calendar classifies game dates into series using the configured season
// windows. Dates outside every window are unknown.
type Calendar struct {
	windows []seriesWindow
}

// NewCalendar builds a Calendar from the season schedule keyed by year.
func NewCalendar(schedule map[string]config.Season) (*Calendar, error) {
	cal := &Calendar{}
	for year, season := range schedule {
		for series, w := range map[baseball.Series]config.Window{
			baseball.SeriesPreSeason:    season.PreSeason,
			baseball.SeriesPennant:      season.Pennant,
			baseball.SeriesClimax:       season.Climax,
			baseball.SeriesChampionship: season.Championship,
		} {
			if w.StartDate == "" && w.EndDate == "" {
				continue
			}
			from, to, err := config.ParseDateRange(w.StartDate, w.EndDate)
			if err != nil {
				return nil, fmt.Errorf("schedule %s %s: %w", year, series, err)
			}
			cal.windows = append(cal.windows, seriesWindow{series: series, from: from, to: to})
		}
	}
	sort.Slice(cal.windows, func(i, j int) bool {
		return cal.windows[i].from.Before(cal.windows[j].from)
	})
	return cal, nil
}

// Classify returns the series whose window contains date.
func (c *Calendar) Classify(date time.Time) baseball.Series {
	if c == nil {
		return baseball.SeriesUnknown
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	for _, w := range c.windows {
		if !day.Before(w.from) && !day.After(w.to) {
			return w.series
		}
	}
	return baseball.SeriesUnknown
}
