package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

func TestParsePlayPage(t *testing.T) {
	t.Parallel()

	page, err := ParsePlayPage(mustDoc(t, playPage), "npb")
	require.NoError(t, err)
	require.False(t, page.Terminal)
	require.Equal(t, "0320200", page.NextIndex)
	require.Equal(t, 3, page.Inning)
	require.Equal(t, baseball.HalfBottom, page.Half)
	require.Equal(t, "npb1100020", *page.BatterID)
	require.Equal(t, "右打", *page.BatterHand)
	require.Equal(t, "npb1200002", *page.PitcherID)
	require.Equal(t, "右投", *page.PitcherHand)
	require.Equal(t, "レフトへのヒット", *page.Result)
	require.Equal(t, "単打", *page.HitType)
	require.Equal(t, "npb1100030", *page.Runners[0])
	require.Nil(t, page.Runners[1])
	require.Equal(t, "走者", *page.Runners[2])

	require.False(t, page.Misaligned)
	require.Len(t, page.Pitches, 2)
	first := page.Pitches[0]
	require.Equal(t, "ストレート", first.Type)
	require.Equal(t, 148, *first.Speed)
	require.Equal(t, "ボール", first.Result)
	require.Equal(t, 52, *first.Y)
	require.Equal(t, 81, *first.X)
	second := page.Pitches[1]
	require.Nil(t, second.Speed)
	require.Equal(t, 121, *second.Y)
	require.Equal(t, 40, *second.X)
}

func TestParsePlayPageTerminal(t *testing.T) {
	t.Parallel()

	page, err := ParsePlayPage(mustDoc(t, terminalPlayPage), "npb")
	require.NoError(t, err)
	require.True(t, page.Terminal)
	require.Empty(t, page.Pitches)
}

func TestParsePlayPageWithoutBatterDegrades(t *testing.T) {
	t.Parallel()

	html := `<div class="bb-liveText__inning">9回表</div>
<a id="btn_next" index="0910300" href="#">次へ</a>
<div id="pit"><a class="bb-liveText__player" href="/npb/player/1200002/top">西</a></div>`
	page, err := ParsePlayPage(mustDoc(t, html), "npb")
	require.NoError(t, err)
	require.Equal(t, "0910300", page.NextIndex)
	require.Equal(t, baseball.HalfTop, page.Half)
	require.Nil(t, page.BatterID)
	require.Nil(t, page.BatterHand)
	require.Equal(t, "npb1200002", *page.PitcherID)
	require.Nil(t, page.PitcherHand)
	require.Empty(t, page.Pitches)
}

func TestParsePlayPageRejectsUnexpectedPages(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no inning marker": `<a id="btn_next" href="?index=1">次へ</a>`,
		"garbled inning":   `<div class="bb-liveText__inning">延長</div><a id="btn_next" href="?index=1">次へ</a>`,
		"no next link":     `<div class="bb-liveText__inning">1回表</div>`,
	}
	for name, html := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePlayPage(mustDoc(t, html), "npb")
			require.ErrorIs(t, err, baseball.ErrExtraction)
		})
	}
}

func TestZipPitchesTruncatesToShortest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		types      []string
		speeds     []string
		results    []string
		styles     []string
		want       int
		misaligned bool
	}{
		{"aligned", []string{"a", "b"}, []string{"150km/h", "140km/h"}, []string{"x", "y"}, []string{"top:1px;left:2px", "top:3px;left:4px"}, 2, false},
		{"short speeds", []string{"a", "b", "c"}, []string{"150km/h"}, []string{"x", "y", "z"}, []string{"top:1px;left:2px", "top:1px;left:2px", "top:1px;left:2px"}, 1, true},
		{"no chart", []string{"a"}, []string{"-"}, []string{"x"}, nil, 0, true},
		{"all empty", nil, nil, nil, nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rows, misaligned := ZipPitches(tc.types, tc.speeds, tc.results, tc.styles)
			require.Len(t, rows, tc.want)
			require.Equal(t, tc.misaligned, misaligned)
		})
	}
}

func TestParseSpeedSentinelIsAbsent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"-", " - ", "", "－", "計測不能"} {
		require.Nil(t, ParseSpeed(raw), raw)
	}
	got := ParseSpeed("155km/h")
	require.NotNil(t, got)
	require.Equal(t, 155, *got)
}

func TestParseChartStyle(t *testing.T) {
	t.Parallel()

	top, left := ParseChartStyle("top:52px;left:81px;")
	require.Equal(t, 52, *top)
	require.Equal(t, 81, *left)

	top, left = ParseChartStyle("left:10px")
	require.Nil(t, top)
	require.Nil(t, left)
}

func TestParseInning(t *testing.T) {
	t.Parallel()

	n, half, ok := ParseInning("12回裏")
	require.True(t, ok)
	require.Equal(t, 12, n)
	require.Equal(t, baseball.HalfBottom, half)

	_, _, ok = ParseInning("0回表")
	require.False(t, ok)
}
