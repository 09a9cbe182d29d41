package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/extract"
)

// GameCrawler reads game landing pages into summaries.
type GameCrawler struct {
	site     Site
	fetcher  baseball.Fetcher
	calendar *Calendar
	teams    *TeamRegistry
	logger   *zap.Logger
}

// NewGameCrawler constructs a GameCrawler.
func NewGameCrawler(
	site Site,
	fetcher baseball.Fetcher,
	calendar *Calendar,
	teams *TeamRegistry,
	logger *zap.Logger,
) *GameCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameCrawler{
		site:     site,
		fetcher:  fetcher,
		calendar: calendar,
		teams:    teams,
		logger:   logger.Named("game"),
	}
}

// GetSummary fetches and extracts the summary of a game, returning the raw page
// alongside it for archiving.
func (c *GameCrawler) GetSummary(ctx context.Context, gameNumber string) (baseball.GameSummary, string, error) {
	gameID := c.site.GameID(gameNumber)
	html, err := c.fetcher.Fetch(ctx, c.site.GameURL(gameNumber))
	if err != nil {
		return baseball.GameSummary{}, "", fmt.Errorf("fetch game %s: %w", gameID, err)
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return baseball.GameSummary{}, "", fmt.Errorf("parse game %s: %w", gameID, err)
	}
	summary, err := extract.GameSummary(doc, gameID, c.site.League)
	if err != nil {
		return baseball.GameSummary{}, "", fmt.Errorf("extract game %s: %w", gameID, err)
	}

	summary.Series = c.calendar.Classify(summary.GameDate)
	if summary.Finished() {
		summary.HomeTeamID = c.teams.IDForName(summary.HomeTeamName)
		summary.AwayTeamID = c.teams.IDForName(summary.AwayTeamName)
		if _, _, _, perr := extract.PitchersOfRecord(doc, c.site.League); perr != nil {
			c.logger.Warn("pitchers of record unavailable",
				zap.String("game_id", gameID),
				zap.Error(perr),
			)
		}
	}

	c.logger.Debug("extracted summary",
		zap.String("game_id", gameID),
		zap.String("status", string(summary.Status)),
		zap.String("series", string(summary.Series)),
	)
	return summary, html, nil
}
