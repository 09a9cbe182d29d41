// Package scraper walks the sports portal page by page and turns pages into
// baseball records. Fetching is delegated to a baseball.Fetcher and markup
// interpretation to the extract package.
package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

// Member list kinds, in the order rosters are read.
const (
	KindPitchers = "p"
	KindBatters  = "b"
)

// Site locates the portal pages of one league.
type Site struct {
	Domain     string
	League     string
	StartIndex string
}

// ScheduleURL is the day's schedule page.
func (s Site) ScheduleURL(date time.Time) string {
	return fmt.Sprintf("%s/%s/schedule/?date=%s", s.base(), s.League, date.Format(baseball.DateLayout))
}

// GameURL is the landing page of a game.
func (s Site) GameURL(gameNumber string) string {
	return fmt.Sprintf("%s/%s/game/%s/top", s.base(), s.League, gameNumber)
}

// ScoreURL is the scoring page of a game at a continuation token.
func (s Site) ScoreURL(gameNumber, index string) string {
	return fmt.Sprintf("%s/%s/game/%s/score?index=%s", s.base(), s.League, gameNumber, url.QueryEscape(index))
}

// MemberListURL is a team's member list of the given kind.
func (s Site) MemberListURL(siteTeamID, kind string) string {
	return fmt.Sprintf("%s/%s/teams/%s/memberlist?kind=%s", s.base(), s.League, siteTeamID, kind)
}

// PlayerURL is a player's profile page.
func (s Site) PlayerURL(rawPlayerID string) string {
	return fmt.Sprintf("%s/%s/player/%s/top", s.base(), s.League, rawPlayerID)
}

// GameID is the warehouse identifier of a site game number.
func (s Site) GameID(gameNumber string) string {
	return s.League + gameNumber
}

// PlayerID is the warehouse identifier of a site player id.
func (s Site) PlayerID(rawPlayerID string) string {
	return s.League + rawPlayerID
}

func (s Site) base() string {
	return strings.TrimRight(s.Domain, "/")
}
