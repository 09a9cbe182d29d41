package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const schedulePage = `<html><body>
<ul>
  <li><a class="bb-score__content" href="https://baseball.example.jp/npb/game/2021090401/index">G - T</a></li>
  <li><a class="bb-score__content" href="/npb/game/2021090402/index">C - S</a></li>
  <li><a class="bb-score__content">no link</a></li>
  <li><a class="bb-score__content" href="/npb/game/2021090403/index">F - L</a></li>
</ul>
</body></html>`

const finishedGamePage = `<html><head><title>2021年9月4日 巨人vs.阪神 - プロ野球</title></head><body>
<h1 class="bb-head01__title"><span>セ・リーグ公式戦</span></h1>
<p class="bb-gameRound">21回戦</p>
<span class="bb-gameCard__state">試合終了</span>
<p class="bb-gameDescription">
  9月4日（土）
  18:00
  東京 ドーム
</p>
<table>
  <tr>
    <td><a class="bb-gameScoreTable__team" href="/npb/teams/5">阪神</a></td>
    <td class="bb-gameScoreTable__total">2</td>
    <td class="bb-gameScoreTable__total bb-gameScoreTable__data--hits">7</td>
    <td class="bb-gameScoreTable__total bb-gameScoreTable__data--loss">1</td>
  </tr>
  <tr>
    <td><a class="bb-gameScoreTable__team" href="/npb/teams/1">巨人</a></td>
    <td class="bb-gameScoreTable__total">5</td>
    <td class="bb-gameScoreTable__total bb-gameScoreTable__data--hits">10</td>
    <td class="bb-gameScoreTable__total bb-gameScoreTable__data--loss">0</td>
  </tr>
</table>
<section id="pit_rec">
  <table><tr>
    <td class="bb-gameTable__data"><a class="bb-gameTable__player" href="/npb/player/1100001/top">菅野</a></td>
    <td class="bb-gameTable__data"><a class="bb-gameTable__player" href="/npb/player/1200002/top">西</a></td>
    <td class="bb-gameTable__data"> </td>
  </tr></table>
</section>
<section id="strt_mem">
  <table class="bb-splitsTable"><tr><td><a href="/npb/player/1200002/top">西</a></td></tr></table>
  <table class="bb-splitsTable"><tr><td><a href="/npb/player/1200010/top">近本</a></td></tr></table>
  <table class="bb-splitsTable"><tr><td><a href="/npb/player/1100001/top">菅野</a></td></tr></table>
  <table class="bb-splitsTable"><tr><td><a href="/npb/player/1100020/top">坂本</a></td></tr></table>
</section>
<section class="bb-modCommon01"><p>unrelated</p></section>
<section class="bb-modCommon01">
  <table><tr>
    <td class="bb-tableLeft__data">球審A</td>
    <td class="bb-tableLeft__data">一塁B</td>
    <td class="bb-tableLeft__data">二塁C</td>
    <td class="bb-tableLeft__data">三塁D</td>
  </tr></table>
</section>
<section class="bb-modCommon01">
  <table><tr>
    <td class="bb-tableLeft__data">31,523人</td>
    <td class="bb-tableLeft__data">3時間12分</td>
  </tr></table>
</section>
</body></html>`

const drawnGamePage = `<html><head><title>2021年9月5日 巨人vs.阪神</title></head><body>
<span class="bb-gameCard__state">試合終了</span>
<table>
  <tr><td><a class="bb-gameScoreTable__team">阪神</a></td><td class="bb-gameScoreTable__total">3</td></tr>
  <tr><td><a class="bb-gameScoreTable__team">巨人</a></td><td class="bb-gameScoreTable__total">3</td></tr>
</table>
</body></html>`

const cancelledGamePage = `<html><head><title>2021年9月4日 広島vs.ヤクルト</title></head><body>
<span class="bb-gameCard__state">試合中止</span>
<table>
  <tr><td><a class="bb-gameScoreTable__team">ヤクルト</a></td><td class="bb-gameScoreTable__total">0</td></tr>
  <tr><td><a class="bb-gameScoreTable__team">広島</a></td><td class="bb-gameScoreTable__total">0</td></tr>
</table>
</body></html>`

const playPage = `<html><body>
<div class="bb-liveText__inning">3回裏</div>
<a id="btn_next" href="/npb/game/2021090401/score?index=0320200">次へ</a>
<div id="batt"><a class="bb-liveText__player" href="/npb/player/1100020/top">坂本</a><span class="bb-liveText__hand">右打</span></div>
<div id="pit"><a class="bb-liveText__player" href="/npb/player/1200002/top">西</a><span class="bb-liveText__hand">右投</span></div>
<div id="result"><span class="bb-liveText__result">レフトへのヒット</span><em class="bb-liveText__hit">単打</em></div>
<div id="base1"><a href="/npb/player/1100030/top">丸</a></div>
<div id="base2"></div>
<div id="base3">走者</div>
<table id="pitchesDetail">
  <tr>
    <td class="bb-splitsTable__data--type">ストレート</td>
    <td class="bb-splitsTable__data--speed">148km/h</td>
    <td class="bb-splitsTable__data--result">ボール</td>
  </tr>
  <tr>
    <td class="bb-splitsTable__data--type">フォーク</td>
    <td class="bb-splitsTable__data--speed">-</td>
    <td class="bb-splitsTable__data--result">空振り</td>
  </tr>
</table>
<div id="pitchChart">
  <span class="bb-icon__ballCircle" style="top:52px;left:81px;"></span>
  <span class="bb-icon__ballCircle" style="top:120.6px;left:40px;"></span>
</div>
</body></html>`

const terminalPlayPage = `<html><body>
<div class="bb-liveText__inning">試合終了</div>
</body></html>`

const playerProfilePage = `<html><body>
<ruby class="bb-profile__name"><h1>山田 太郎</h1><rt>（やまだ・たろう）</rt></ruby>
<p class="bb-profile__number">18</p>
<dl>
  <dt class="bb-profile__title">生年月日（満年齢）</dt><dd class="bb-profile__text">1994年7月5日（27歳）</dd>
  <dt class="bb-profile__title">出身地</dt><dd class="bb-profile__text">東京</dd>
  <dt class="bb-profile__title">身長</dt><dd class="bb-profile__text">183cm</dd>
  <dt class="bb-profile__title">体重</dt><dd class="bb-profile__text">90kg</dd>
  <dt class="bb-profile__title">血液型</dt><dd class="bb-profile__text">A型</dd>
  <dt class="bb-profile__title">投打</dt><dd class="bb-profile__text">右投右打</dd>
  <dt class="bb-profile__title">ドラフト年（順位）</dt><dd class="bb-profile__text">2015（1位）</dd>
  <dt class="bb-profile__title">プロ通算年</dt><dd class="bb-profile__text">6年</dd>
  <dt class="bb-profile__title">経歴</dt><dd class="bb-profile__text">東京高 - 東京大</dd>
</dl>
<p class="bb-profile__summary">速球派の右腕。</p>
<div class="bb-profile__photo"><img src="https://img.example.jp/1300001.jpg"></div>
</body></html>`

const memberListPage = `<html><body><table>
<tr><td class="bb-playerTable__data bb-playerTable__data--player"><a href="/npb/player/1300001/top">山田</a></td></tr>
<tr><td class="bb-playerTable__data bb-playerTable__data--player"><a href="/npb/player/1300002/top">佐藤</a></td></tr>
<tr><td class="bb-playerTable__data"><a href="/npb/player/9999999/top">ignored</a></td></tr>
</table></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
