package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

const gamePage = "game"

const (
	gameStateSelector       = "span.bb-gameCard__state"
	gameDescriptionSelector = "p[class='bb-gameDescription']"
	gameTitleSelector       = "h1.bb-head01__title span"
	gameRoundSelector       = "p.bb-gameRound"
	teamSelector            = "a.bb-gameScoreTable__team"
	totalSelector           = "td[class='bb-gameScoreTable__total']"
	hitsSelector            = "td[class='bb-gameScoreTable__total bb-gameScoreTable__data--hits']"
	errorsSelector          = "td[class='bb-gameScoreTable__total bb-gameScoreTable__data--loss']"
	pitchersOfRecordCells   = "section[id='pit_rec'] td.bb-gameTable__data"
	pitcherOfRecordLink     = "a[class='bb-gameTable__player']"
	startingLineupTables    = "section[id='strt_mem'] table.bb-splitsTable"
	infoSections            = "section[class='bb-modCommon01']"
	infoCells               = "td.bb-tableLeft__data"
)

var statusLabels = map[string]baseball.GameStatus{
	"試合終了": baseball.StatusFinish,
	"試合中止": baseball.StatusCancel,
	"試合前":  baseball.StatusBefore,
}

// GameStatus reads the state badge of a game page. A page without the badge is
// not a game page and yields an extraction error; an unrecognised label maps
// to unknown.
func GameStatus(doc *goquery.Document) (baseball.GameStatus, error) {
	label := text(doc.Find(gameStateSelector))
	if label == nil {
		return "", &baseball.ExtractionError{Page: gamePage, Field: "status", Reason: "state marker absent"}
	}
	if status, ok := statusLabels[*label]; ok {
		return status, nil
	}
	return baseball.StatusUnknown, nil
}

// GameDate reads the calendar date from the document title ("2021年9月4日 ...").
func GameDate(doc *goquery.Document) (time.Time, error) {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	date, ok := parseJPDate(title)
	if !ok {
		return time.Time{}, &baseball.ExtractionError{Page: gamePage, Field: "game_date", Reason: "title has no date"}
	}
	return date, nil
}

func parseJPDate(raw string) (time.Time, bool) {
	m := jpDate.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

// GameSummary extracts a summary from a game page. Status is parsed first;
// games that are not finished carry only the identifying fields. Series and
// team ids are left for the caller, which owns the season calendar and the
// team registry.
func GameSummary(doc *goquery.Document, gameID, league string) (baseball.GameSummary, error) {
	status, err := GameStatus(doc)
	if err != nil {
		return baseball.GameSummary{}, err
	}
	date, err := GameDate(doc)
	if err != nil {
		return baseball.GameSummary{}, err
	}
	summary := baseball.GameSummary{
		GameID:   gameID,
		GameDate: date,
		Status:   status,
	}
	if status != baseball.StatusFinish {
		return summary, nil
	}

	if err := boxScore(doc, &summary); err != nil {
		return baseball.GameSummary{}, err
	}
	summary.GameTitle = gameTitle(doc)
	summary.StartTime, summary.Stadium = description(doc)

	win, lose, save, err := PitchersOfRecord(doc, league)
	if err == nil {
		summary.WinningPitcherID, summary.LosingPitcherID, summary.SavePitcherID = win, lose, save
	}
	summary.StartingPitcherAwayID, summary.StartingPitcherHomeID = StartingPitchers(doc, league)

	sections := doc.Find(infoSections)
	if n := sections.Length(); n >= 2 {
		umpires := texts(sections.Eq(n - 2).Find(infoCells))
		summary.UmpirePlate = indexOf(umpires, 0)
		summary.UmpireFirst = indexOf(umpires, 1)
		summary.UmpireSecond = indexOf(umpires, 2)
		summary.UmpireThird = indexOf(umpires, 3)

		info := texts(sections.Eq(n - 1).Find(infoCells))
		if v := indexOf(info, 0); v != nil {
			summary.Attendance = digits(*v)
		}
		summary.Duration = indexOf(info, 1)
	}
	return summary, nil
}

// boxScore fills teams, runs, hits and errors. The top row is the visiting
// team and the bottom row the home team.
func boxScore(doc *goquery.Document, summary *baseball.GameSummary) error {
	teams := texts(doc.Find(teamSelector))
	if len(teams) < 2 {
		return &baseball.ExtractionError{Page: gamePage, Field: "teams", Reason: "score table has fewer than two teams"}
	}
	summary.AwayTeamName = indexOf(teams, 0)
	summary.HomeTeamName = indexOf(teams, 1)

	totals := texts(doc.Find(totalSelector))
	if len(totals) < 2 {
		return &baseball.ExtractionError{Page: gamePage, Field: "score", Reason: "score totals absent"}
	}
	away, errAway := strconv.Atoi(totals[0])
	home, errHome := strconv.Atoi(totals[1])
	if errAway != nil || errHome != nil {
		return &baseball.ExtractionError{Page: gamePage, Field: "score", Reason: "score totals are not numeric"}
	}
	summary.AwayScore, summary.HomeScore = &away, &home
	result := Result(home, away)
	summary.Result = &result

	hits := texts(doc.Find(hitsSelector))
	summary.AwayHits, summary.HomeHits = pairInts(hits)
	errs := texts(doc.Find(errorsSelector))
	summary.AwayErrors, summary.HomeErrors = pairInts(errs)
	return nil
}

// Result compares the home score with the away score.
func Result(home, away int) baseball.GameResult {
	switch {
	case home > away:
		return baseball.ResultHomeWin
	case home < away:
		return baseball.ResultAwayWin
	default:
		return baseball.ResultDraw
	}
}

func pairInts(values []string) (*int, *int) {
	if len(values) < 2 {
		return nil, nil
	}
	var first, second *int
	if n, err := strconv.Atoi(values[0]); err == nil {
		first = &n
	}
	if n, err := strconv.Atoi(values[1]); err == nil {
		second = &n
	}
	return first, second
}

func gameTitle(doc *goquery.Document) *string {
	name := text(doc.Find(gameTitleSelector))
	round := text(doc.Find(gameRoundSelector))
	switch {
	case name != nil && round != nil:
		v := *name + " " + *round
		return &v
	case name != nil:
		return name
	default:
		return round
	}
}

// description returns the start time and the stadium, which follows the time
// line in the description block.
func description(doc *goquery.Document) (*string, *string) {
	block := doc.Find(gameDescriptionSelector)
	if block.Length() == 0 {
		return nil, nil
	}
	var lines []string
	for _, line := range strings.Split(block.First().Text(), "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line != "" {
			lines = append(lines, line)
		}
	}
	for i, line := range lines {
		if clockTime.MatchString(line) {
			return indexOf(lines, i), indexOf(lines, i+1)
		}
	}
	return nil, nil
}

// PitchersOfRecord returns the winning, losing and save pitcher ids. An error
// means the record section is absent or mis-shaped, which happens on drawn
// games; callers treat all three as absent.
func PitchersOfRecord(doc *goquery.Document, league string) (win, lose, save *string, err error) {
	cells := doc.Find(pitchersOfRecordCells)
	if cells.Length() < 3 {
		return nil, nil, nil, &baseball.ExtractionError{
			Page:   gamePage,
			Field:  "pitchers_of_record",
			Reason: "record section absent or has fewer than three cells",
		}
	}
	ids := make([]*string, 3)
	for i := range ids {
		cell := cells.Eq(i)
		if strings.TrimSpace(cell.Text()) == "" {
			continue
		}
		href, ok := cell.Find(pitcherOfRecordLink).First().Attr("href")
		if !ok {
			return nil, nil, nil, &baseball.ExtractionError{
				Page:   gamePage,
				Field:  "pitchers_of_record",
				Reason: "named pitcher has no player link",
			}
		}
		if id, ok := PlayerIDFromHref(league, href); ok {
			ids[i] = &id
		}
	}
	return ids[0], ids[1], ids[2], nil
}

// StartingPitchers returns the away and home starters from the lineup tables.
// The first table lists the visiting starter, the third the home starter.
func StartingPitchers(doc *goquery.Document, league string) (away, home *string) {
	tables := doc.Find(startingLineupTables)
	pick := func(i int) *string {
		if i >= tables.Length() {
			return nil
		}
		href, ok := tables.Eq(i).Find("a").First().Attr("href")
		if !ok {
			return nil
		}
		id, ok := PlayerIDFromHref(league, href)
		if !ok {
			return nil
		}
		return &id
	}
	return pick(0), pick(2)
}
