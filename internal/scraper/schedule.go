package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/extract"
)

// ScheduleCrawler lists the games played on a date.
type ScheduleCrawler struct {
	site    Site
	fetcher baseball.Fetcher
	logger  *zap.Logger
}

// NewScheduleCrawler constructs a ScheduleCrawler.
func NewScheduleCrawler(site Site, fetcher baseball.Fetcher, logger *zap.Logger) *ScheduleCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCrawler{site: site, fetcher: fetcher, logger: logger.Named("schedule")}
}

// ListGames returns the site game numbers of date in page order. A schedule
// page without game cards yields an empty list; the selector alone cannot
// distinguish a rest day from a changed page layout.
func (c *ScheduleCrawler) ListGames(ctx context.Context, date time.Time) ([]string, error) {
	html, err := c.fetcher.Fetch(ctx, c.site.ScheduleURL(date))
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	games := extract.GameNumbers(doc)
	c.logger.Debug("listed games",
		zap.String("date", date.Format(baseball.DateLayout)),
		zap.Strings("games", games),
	)
	return games, nil
}
