package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/extract"
)

// RosterCrawler reads team member lists and player profiles.
type RosterCrawler struct {
	site    Site
	fetcher baseball.Fetcher
	logger  *zap.Logger
}

// NewRosterCrawler constructs a RosterCrawler.
func NewRosterCrawler(site Site, fetcher baseball.Fetcher, logger *zap.Logger) *RosterCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterCrawler{site: site, fetcher: fetcher, logger: logger.Named("roster")}
}

// ListTeamPlayers returns the site player ids of a team, pitchers first and
// then batters, each in page order.
func (c *RosterCrawler) ListTeamPlayers(ctx context.Context, siteTeamID string) ([]string, error) {
	ids := []string{}
	for _, kind := range []string{KindPitchers, KindBatters} {
		html, err := c.fetcher.Fetch(ctx, c.site.MemberListURL(siteTeamID, kind))
		if err != nil {
			return nil, fmt.Errorf("fetch member list %s/%s: %w", siteTeamID, kind, err)
		}
		doc, err := extract.ParseDocument(html)
		if err != nil {
			return nil, fmt.Errorf("parse member list %s/%s: %w", siteTeamID, kind, err)
		}
		ids = append(ids, extract.TeamPlayerIDs(doc)...)
	}
	c.logger.Debug("listed team players", zap.String("team", siteTeamID), zap.Int("players", len(ids)))
	return ids, nil
}

// GetPlayer fetches and extracts the profile of a site player id.
func (c *RosterCrawler) GetPlayer(ctx context.Context, rawPlayerID string) (baseball.PlayerProfile, error) {
	html, err := c.fetcher.Fetch(ctx, c.site.PlayerURL(rawPlayerID))
	if err != nil {
		return baseball.PlayerProfile{}, fmt.Errorf("fetch player %s: %w", rawPlayerID, err)
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return baseball.PlayerProfile{}, fmt.Errorf("parse player %s: %w", rawPlayerID, err)
	}
	profile, err := extract.PlayerProfile(doc, c.site.PlayerID(rawPlayerID))
	if err != nil {
		return baseball.PlayerProfile{}, fmt.Errorf("extract player %s: %w", rawPlayerID, err)
	}
	return profile, nil
}
