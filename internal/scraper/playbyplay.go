package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/extract"
	"github.com/npblake/sponavi-crawler/internal/metrics"
)

const defaultMaxPages = 600

// PlayLog is everything emitted while walking one game's scoring pages.
type PlayLog struct {
	Plays   []baseball.PlayState
	Pitches []baseball.Pitch
	// Tokens lists every continuation token fetched, in order.
	Tokens []string
}

// step is the walk state after a page: either continue at a token or stop.
type step struct {
	done  bool
	token string
}

// PlayByPlayCrawler follows the continuation links of a game's scoring pages
// from the first pitch to the end-of-game page.
type PlayByPlayCrawler struct {
	site     Site
	fetcher  baseball.Fetcher
	maxPages int
	logger   *zap.Logger
}

// NewPlayByPlayCrawler constructs a PlayByPlayCrawler. maxPages bounds a single
// walk; zero selects the default.
func NewPlayByPlayCrawler(site Site, fetcher baseball.Fetcher, maxPages int, logger *zap.Logger) *PlayByPlayCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &PlayByPlayCrawler{
		site:     site,
		fetcher:  fetcher,
		maxPages: maxPages,
		logger:   logger.Named("pbp"),
	}
}

// Crawl walks a finished game. On error the returned log still holds the
// records emitted before the failing page.
func (c *PlayByPlayCrawler) Crawl(ctx context.Context, gameNumber string) (PlayLog, error) {
	gameID := c.site.GameID(gameNumber)
	var log PlayLog
	seen := make(map[string]struct{})

	for cur := (step{token: c.site.StartIndex}); !cur.done; {
		if len(log.Tokens) >= c.maxPages {
			return log, &baseball.ExtractionError{
				Page:   "score",
				Field:  "next_index",
				Reason: fmt.Sprintf("walk exceeded %d pages", c.maxPages),
			}
		}
		if _, dup := seen[cur.token]; dup {
			return log, &baseball.ExtractionError{
				Page:   "score",
				Field:  "next_index",
				Reason: fmt.Sprintf("continuation token %s repeated", cur.token),
			}
		}
		seen[cur.token] = struct{}{}
		log.Tokens = append(log.Tokens, cur.token)

		next, err := c.visit(ctx, gameNumber, gameID, cur.token, &log)
		if err != nil {
			return log, err
		}
		cur = next
	}

	c.logger.Debug("walked game",
		zap.String("game_id", gameID),
		zap.Int("pages", len(log.Tokens)),
		zap.Int("plays", len(log.Plays)),
		zap.Int("pitches", len(log.Pitches)),
	)
	return log, nil
}

func (c *PlayByPlayCrawler) visit(ctx context.Context, gameNumber, gameID, token string, log *PlayLog) (step, error) {
	html, err := c.fetcher.Fetch(ctx, c.site.ScoreURL(gameNumber, token))
	if err != nil {
		return step{}, fmt.Errorf("fetch score page %s: %w", token, err)
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return step{}, fmt.Errorf("parse score page %s: %w", token, err)
	}
	page, err := extract.ParsePlayPage(doc, c.site.League)
	if err != nil {
		return step{}, fmt.Errorf("score page %s: %w", token, err)
	}
	if page.Terminal {
		return step{done: true}, nil
	}

	if page.Misaligned {
		metrics.ObservePitchMisaligned()
		c.logger.Warn("pitch lists misaligned",
			zap.String("game_id", gameID),
			zap.String("index", token),
			zap.Int("kept", len(page.Pitches)),
			zap.Error(baseball.ErrPitchMisaligned),
		)
	}

	log.Plays = append(log.Plays, baseball.PlayState{
		GameID:      gameID,
		PageIndex:   token,
		Sequence:    len(log.Plays) + 1,
		Inning:      page.Inning,
		Half:        page.Half,
		BatterID:    page.BatterID,
		BatterHand:  page.BatterHand,
		PitcherID:   page.PitcherID,
		PitcherHand: page.PitcherHand,
		AtBatResult: page.Result,
		Runner1:     page.Runners[0],
		Runner2:     page.Runners[1],
		Runner3:     page.Runners[2],
		HitType:     page.HitType,
	})
	for i, p := range page.Pitches {
		log.Pitches = append(log.Pitches, baseball.Pitch{
			GameID:         gameID,
			PageIndex:      token,
			SequenceNumber: i + 1,
			PitchType:      p.Type,
			Speed:          p.Speed,
			Result:         p.Result,
			LocationX:      p.X,
			LocationY:      p.Y,
		})
	}

	c.logger.Debug("visited score page",
		zap.String("game_id", gameID),
		zap.String("index", token),
		zap.Int("pitches", len(page.Pitches)),
	)
	return step{token: page.NextIndex}, nil
}
