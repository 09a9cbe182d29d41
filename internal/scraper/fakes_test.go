package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

const testDomain = "https://portal.test"

var testSite = Site{Domain: testDomain, League: "npb", StartIndex: "0110100"}

// fakeFetcher serves canned pages by URL and records every request.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, fail: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err, ok := f.fail[url]; ok {
		return "", err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", &baseball.TransportError{URL: url, StatusCode: http.StatusNotFound}
	}
	return page, nil
}

func (f *fakeFetcher) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// scorePage renders a scoring page at inning with the given next token and
// pitch speeds. An empty next omits the continuation link.
func scorePage(inning, next string, speeds ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<div class=\"bb-liveText__inning\">%s</div>\n", inning)
	if next != "" {
		fmt.Fprintf(&b, "<a id=\"btn_next\" href=\"/npb/game/2021090401/score?index=%s\">次へ</a>\n", next)
	}
	b.WriteString(`<div id="batt"><a class="bb-liveText__player" href="/npb/player/1100020/top">坂本</a><span class="bb-liveText__hand">右打</span></div>`)
	b.WriteString(`<div id="pit"><a class="bb-liveText__player" href="/npb/player/1200002/top">西</a><span class="bb-liveText__hand">右投</span></div>`)
	b.WriteString("\n<table id=\"pitchesDetail\">\n")
	for _, s := range speeds {
		fmt.Fprintf(&b, "<tr><td class=\"bb-splitsTable__data--type\">ストレート</td><td class=\"bb-splitsTable__data--speed\">%s</td><td class=\"bb-splitsTable__data--result\">ボール</td></tr>\n", s)
	}
	b.WriteString("</table>\n<div id=\"pitchChart\">\n")
	for i := range speeds {
		fmt.Fprintf(&b, "<span class=\"bb-icon__ballCircle\" style=\"top:%dpx;left:%dpx;\"></span>\n", 10+i, 20+i)
	}
	b.WriteString("</div>\n</body></html>")
	return b.String()
}

const endOfGamePage = `<html><body><div class="bb-liveText__inning">試合終了</div></body></html>`

const finishedGame = `<html><head><title>2021年9月4日 巨人vs.阪神</title></head><body>
<span class="bb-gameCard__state">試合終了</span>
<table>
  <tr><td><a class="bb-gameScoreTable__team">阪神</a></td><td class="bb-gameScoreTable__total">2</td></tr>
  <tr><td><a class="bb-gameScoreTable__team">巨人</a></td><td class="bb-gameScoreTable__total">5</td></tr>
</table>
<section id="pit_rec"><table><tr>
  <td class="bb-gameTable__data"><a class="bb-gameTable__player" href="/npb/player/1100001/top">菅野</a></td>
  <td class="bb-gameTable__data"><a class="bb-gameTable__player" href="/npb/player/1200002/top">西</a></td>
  <td class="bb-gameTable__data"> </td>
</tr></table></section>
</body></html>`

const finishedGameNoPitchers = `<html><head><title>2021年9月4日 ロッテvs.新球団</title></head><body>
<span class="bb-gameCard__state">試合終了</span>
<table>
  <tr><td><a class="bb-gameScoreTable__team">新球団</a></td><td class="bb-gameScoreTable__total">1</td></tr>
  <tr><td><a class="bb-gameScoreTable__team">ロッテ</a></td><td class="bb-gameScoreTable__total">1</td></tr>
</table>
</body></html>`

const cancelledGame = `<html><head><title>2021年9月4日 広島vs.ヤクルト</title></head><body>
<span class="bb-gameCard__state">試合中止</span>
</body></html>`

const scheduleWithGames = `<html><body>
<a class="bb-score__content" href="/npb/game/2021090401/index">G - T</a>
<a class="bb-score__content" href="/npb/game/2021090402/index">C - S</a>
</body></html>`

const memberList = `<html><body><table>
<tr><td class="bb-playerTable__data bb-playerTable__data--player"><a href="/npb/player/%s/top">x</a></td></tr>
</table></body></html>`

const profile = `<html><body>
<ruby class="bb-profile__name"><h1>山田 太郎</h1><rt>（やまだ・たろう）</rt></ruby>
<dl>
  <dt class="bb-profile__title">身長</dt><dd class="bb-profile__text">183cm</dd>
</dl>
</body></html>`
