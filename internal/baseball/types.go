package baseball

import "time"

// GameStatus is the lifecycle state shown on a game's landing page.
type GameStatus string

// Game status values written to lake_game.
const (
	StatusBefore  GameStatus = "before"
	StatusFinish  GameStatus = "finish"
	StatusCancel  GameStatus = "cancel"
	StatusUnknown GameStatus = "unknown"
)

// Series is the competitive phase of the season a game belongs to.
type Series string

// Series values derived from the season calendar.
const (
	SeriesPreSeason    Series = "pre_season"
	SeriesPennant      Series = "pennant"
	SeriesClimax       Series = "climax"
	SeriesChampionship Series = "championship"
	SeriesUnknown      Series = "unknown"
)

// GameResult is the outcome of a finished game from the home side's view.
type GameResult string

// Game results.
const (
	ResultHomeWin GameResult = "home_win"
	ResultAwayWin GameResult = "away_win"
	ResultDraw    GameResult = "draw"
)

// Half is the half-inning; the visiting team bats in the top.
type Half string

// Half-inning values.
const (
	HalfTop    Half = "top"
	HalfBottom Half = "bottom"
)

// DateLayout is the ISO calendar date format used on every table.
const DateLayout = "2006-01-02"

// GameSummary is one row of lake_game. Fields after Series are populated only
// for finished games.
type GameSummary struct {
	GameID   string
	GameDate time.Time
	Status   GameStatus
	Series   Series

	GameTitle    *string
	Stadium      *string
	StartTime    *string
	HomeTeamID   *string
	AwayTeamID   *string
	HomeTeamName *string
	AwayTeamName *string
	HomeScore    *int
	AwayScore    *int
	HomeHits     *int
	AwayHits     *int
	HomeErrors   *int
	AwayErrors   *int
	Result       *GameResult

	WinningPitcherID      *string
	LosingPitcherID       *string
	SavePitcherID         *string
	StartingPitcherHomeID *string
	StartingPitcherAwayID *string

	UmpirePlate  *string
	UmpireFirst  *string
	UmpireSecond *string
	UmpireThird  *string
	Attendance   *int
	Duration     *string
}

// Finished reports whether the summary carries a box score.
func (g GameSummary) Finished() bool {
	return g.Status == StatusFinish
}

// Row maps the summary onto lake_game column names.
func (g GameSummary) Row() map[string]any {
	var result any
	if g.Result != nil {
		result = string(*g.Result)
	}
	return map[string]any{
		"game_id":                  g.GameID,
		"game_date":                g.GameDate.Format(DateLayout),
		"game_status":              string(g.Status),
		"game_series":              string(g.Series),
		"game_title":               nullable(g.GameTitle),
		"stadium":                  nullable(g.Stadium),
		"game_start_time":          nullable(g.StartTime),
		"team_home_id":             nullable(g.HomeTeamID),
		"team_away_id":             nullable(g.AwayTeamID),
		"team_home_name":           nullable(g.HomeTeamName),
		"team_away_name":           nullable(g.AwayTeamName),
		"score_home":               nullable(g.HomeScore),
		"score_away":               nullable(g.AwayScore),
		"hit_home":                 nullable(g.HomeHits),
		"hit_away":                 nullable(g.AwayHits),
		"error_home":               nullable(g.HomeErrors),
		"error_away":               nullable(g.AwayErrors),
		"game_result":              result,
		"pitcher_win_id":           nullable(g.WinningPitcherID),
		"pitcher_lose_id":          nullable(g.LosingPitcherID),
		"pitcher_save_id":          nullable(g.SavePitcherID),
		"starting_pitcher_home_id": nullable(g.StartingPitcherHomeID),
		"starting_pitcher_away_id": nullable(g.StartingPitcherAwayID),
		"umpire_plate":             nullable(g.UmpirePlate),
		"umpire_first":             nullable(g.UmpireFirst),
		"umpire_second":            nullable(g.UmpireSecond),
		"umpire_third":             nullable(g.UmpireThird),
		"audience_num":             nullable(g.Attendance),
		"game_time":                nullable(g.Duration),
	}
}

// PlayState is one plate-appearance snapshot rendered on one scoring page.
type PlayState struct {
	GameID      string
	PageIndex   string
	Sequence    int
	Inning      int
	Half        Half
	BatterID    *string
	BatterHand  *string
	PitcherID   *string
	PitcherHand *string
	AtBatResult *string
	Runner1     *string
	Runner2     *string
	Runner3     *string
	HitType     *string
}

// Row maps the play state onto lake_score column names.
func (p PlayState) Row() map[string]any {
	return map[string]any{
		"game_id":      p.GameID,
		"page_index":   p.PageIndex,
		"sequence":     p.Sequence,
		"inning":       p.Inning,
		"half":         string(p.Half),
		"batter_id":    nullable(p.BatterID),
		"batter_hand":  nullable(p.BatterHand),
		"pitcher_id":   nullable(p.PitcherID),
		"pitcher_hand": nullable(p.PitcherHand),
		"result":       nullable(p.AtBatResult),
		"runner_1b":    nullable(p.Runner1),
		"runner_2b":    nullable(p.Runner2),
		"runner_3b":    nullable(p.Runner3),
		"hit_type":     nullable(p.HitType),
	}
}

// Pitch is one recorded pitch within the plate appearance of a page.
type Pitch struct {
	GameID         string
	PageIndex      string
	SequenceNumber int
	PitchType      string
	Speed          *int
	Result         string
	// LocationX is the left offset on the pitch chart, LocationY the top offset.
	LocationX *int
	LocationY *int
}

// Row maps the pitch onto lake_pitch column names.
func (p Pitch) Row() map[string]any {
	return map[string]any{
		"game_id":      p.GameID,
		"page_index":   p.PageIndex,
		"pitch_num":    p.SequenceNumber,
		"pitch_type":   p.PitchType,
		"speed":        nullable(p.Speed),
		"pitch_result": p.Result,
		"location_x":   nullable(p.LocationX),
		"location_y":   nullable(p.LocationY),
	}
}

// PlayerProfile is one row of lake_player.
type PlayerProfile struct {
	PlayerID      string
	Name          string
	NameKana      *string
	UniformNumber *string
	BirthDate     *time.Time
	BirthPlace    *string
	HeightCM      *int
	WeightKG      *int
	BloodType     *string
	ThrowBat      *string
	DraftYear     *string
	ProYears      *int
	CareerText    *string
	BioText       *string
	PhotoURL      *string
}

// Row maps the profile onto lake_player column names.
func (p PlayerProfile) Row() map[string]any {
	var birth any
	if p.BirthDate != nil {
		birth = p.BirthDate.Format(DateLayout)
	}
	return map[string]any{
		"player_id":        p.PlayerID,
		"player_name":      p.Name,
		"player_name_kana": nullable(p.NameKana),
		"number":           nullable(p.UniformNumber),
		"birth_day":        birth,
		"birth_place":      nullable(p.BirthPlace),
		"height":           nullable(p.HeightCM),
		"weight":           nullable(p.WeightKG),
		"blood_type":       nullable(p.BloodType),
		"throw_batting":    nullable(p.ThrowBat),
		"draft_year":       nullable(p.DraftYear),
		"pro_age":          nullable(p.ProYears),
		"career":           nullable(p.CareerText),
		"profile_text":     nullable(p.BioText),
		"img_url":          nullable(p.PhotoURL),
	}
}

// nullable unwraps optional fields so absent values reach the sink as nil
// rather than as typed nil pointers.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
