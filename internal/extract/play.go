package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

const scorePage = "score"

const (
	inningSelector      = "div.bb-liveText__inning"
	nextLinkSelector    = "a#btn_next"
	playerLinkSelector  = "a.bb-liveText__player"
	handSelector        = "span.bb-liveText__hand"
	batterSelector      = "div#batt"
	pitcherSelector     = "div#pit"
	resultSelector      = "div#result span.bb-liveText__result"
	hitTypeSelector     = "div#result em.bb-liveText__hit"
	pitchTypeSelector   = "#pitchesDetail td.bb-splitsTable__data--type"
	pitchSpeedSelector  = "#pitchesDetail td.bb-splitsTable__data--speed"
	pitchResultSelector = "#pitchesDetail td.bb-splitsTable__data--result"
	pitchChartSelector  = "#pitchChart span.bb-icon__ballCircle"

	terminalMarker = "試合終了"
)

var (
	runnerSelectors = [3]string{"div#base1", "div#base2", "div#base3"}
	inningMarker    = regexp.MustCompile(`(\d+)回(表|裏)`)
)

// PlayPage is everything a single scoring page carries.
type PlayPage struct {
	// Terminal is set on the end-of-game page, which carries no play.
	Terminal bool
	// NextIndex is the continuation token of the following page.
	NextIndex string

	Inning      int
	Half        baseball.Half
	BatterID    *string
	BatterHand  *string
	PitcherID   *string
	PitcherHand *string
	Result      *string
	HitType     *string
	Runners     [3]*string

	Pitches []PitchRow
	// Misaligned reports that the four pitch lists differed in length and
	// Pitches was cut to the shortest.
	Misaligned bool
}

// PitchRow is one positionally zipped pitch.
type PitchRow struct {
	Type   string
	Speed  *int
	Result string
	X      *int
	Y      *int
}

// ParsePlayPage extracts the play snapshot, pitches and continuation token from
// a scoring page. The terminal page short-circuits with Terminal set.
func ParsePlayPage(doc *goquery.Document, league string) (PlayPage, error) {
	marker := text(doc.Find(inningSelector))
	if marker == nil {
		return PlayPage{}, &baseball.ExtractionError{Page: scorePage, Field: "inning", Reason: "inning marker absent"}
	}
	if strings.Contains(*marker, terminalMarker) {
		return PlayPage{Terminal: true}, nil
	}
	inning, half, ok := ParseInning(*marker)
	if !ok {
		return PlayPage{}, &baseball.ExtractionError{
			Page:   scorePage,
			Field:  "inning",
			Reason: "unrecognised inning marker " + strconv.Quote(*marker),
		}
	}
	next, ok := NextIndex(doc)
	if !ok {
		return PlayPage{}, &baseball.ExtractionError{Page: scorePage, Field: "next_index", Reason: "continuation link absent"}
	}

	page := PlayPage{
		NextIndex: next,
		Inning:    inning,
		Half:      half,
		Result:    text(doc.Find(resultSelector)),
		HitType:   text(doc.Find(hitTypeSelector)),
	}
	page.BatterID, page.BatterHand = participant(doc.Find(batterSelector), league)
	page.PitcherID, page.PitcherHand = participant(doc.Find(pitcherSelector), league)
	for i, sel := range runnerSelectors {
		page.Runners[i] = runner(doc.Find(sel), league)
	}

	var styles []string
	doc.Find(pitchChartSelector).Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		styles = append(styles, style)
	})
	page.Pitches, page.Misaligned = ZipPitches(
		texts(doc.Find(pitchTypeSelector)),
		texts(doc.Find(pitchSpeedSelector)),
		texts(doc.Find(pitchResultSelector)),
		styles,
	)
	return page, nil
}

// ParseInning reads markers such as "7回裏".
func ParseInning(marker string) (int, baseball.Half, bool) {
	m := inningMarker.FindStringSubmatch(marker)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, "", false
	}
	if m[2] == "表" {
		return n, baseball.HalfTop, true
	}
	return n, baseball.HalfBottom, true
}

// NextIndex reads the continuation token from the next-page link, preferring
// its index attribute over the index query parameter of its href.
func NextIndex(doc *goquery.Document) (string, bool) {
	link := doc.Find(nextLinkSelector).First()
	if link.Length() == 0 {
		return "", false
	}
	if idx, ok := link.Attr("index"); ok && strings.TrimSpace(idx) != "" {
		return strings.TrimSpace(idx), true
	}
	href, ok := link.Attr("href")
	if !ok {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	idx := u.Query().Get("index")
	return idx, idx != ""
}

func participant(block *goquery.Selection, league string) (id, hand *string) {
	if block.Length() == 0 {
		return nil, nil
	}
	if href, ok := block.Find(playerLinkSelector).First().Attr("href"); ok {
		if v, ok := PlayerIDFromHref(league, href); ok {
			id = &v
		}
	}
	return id, text(block.Find(handSelector))
}

// runner resolves a base occupant to a player id, falling back to the text
// marker the page shows when no profile link exists.
func runner(block *goquery.Selection, league string) *string {
	if block.Length() == 0 {
		return nil
	}
	if href, ok := block.Find("a").First().Attr("href"); ok {
		if v, ok := PlayerIDFromHref(league, href); ok {
			return &v
		}
	}
	return text(block)
}

// ZipPitches joins the four per-pitch lists by position. When the lists differ
// in length the result is cut to the shortest and misaligned is true.
func ZipPitches(types, speeds, results, styles []string) (rows []PitchRow, misaligned bool) {
	n := min(len(types), len(speeds), len(results), len(styles))
	misaligned = n != len(types) || n != len(speeds) || n != len(results) || n != len(styles)
	rows = make([]PitchRow, 0, n)
	for i := range n {
		y, x := ParseChartStyle(styles[i])
		rows = append(rows, PitchRow{
			Type:   types[i],
			Speed:  ParseSpeed(speeds[i]),
			Result: results[i],
			X:      x,
			Y:      y,
		})
	}
	return rows, misaligned
}

// ParseSpeed reads "152km/h". The no-reading dash and any value without digits
// are absent, never zero.
func ParseSpeed(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "－" {
		return nil
	}
	return digits(raw)
}

// ParseChartStyle returns the first two numbers of a chart marker style in
// order, which the page writes as top then left ("top:52px;left:81px;").
func ParseChartStyle(style string) (top, left *int) {
	m := number.FindAllString(style, 2)
	if len(m) < 2 {
		return nil, nil
	}
	t, err := roundInt(m[0])
	if err != nil {
		return nil, nil
	}
	l, err := roundInt(m[1])
	if err != nil {
		return nil, nil
	}
	return &t, &l
}
