package config

// DefaultTeams returns the NPB club registry keyed by league.
func DefaultTeams() map[string][]Team {
	return map[string][]Team{
		"npb": {
			{TeamID: "g", TeamName: "巨人", SiteTeamID: "1"},
			{TeamID: "s", TeamName: "ヤクルト", SiteTeamID: "2"},
			{TeamID: "db", TeamName: "DeNA", SiteTeamID: "3"},
			{TeamID: "d", TeamName: "中日", SiteTeamID: "4"},
			{TeamID: "t", TeamName: "阪神", SiteTeamID: "5"},
			{TeamID: "c", TeamName: "広島", SiteTeamID: "6"},
			{TeamID: "l", TeamName: "西武", SiteTeamID: "7"},
			{TeamID: "f", TeamName: "日本ハム", SiteTeamID: "8"},
			{TeamID: "m", TeamName: "ロッテ", SiteTeamID: "9"},
			{TeamID: "b", TeamName: "オリックス", SiteTeamID: "11"},
			{TeamID: "h", TeamName: "ソフトバンク", SiteTeamID: "12"},
			{TeamID: "e", TeamName: "楽天", SiteTeamID: "376"},
		},
	}
}

// DefaultSchedule returns the season calendar keyed by year.
func DefaultSchedule() map[string]Season {
	return map[string]Season{
		"2021": {
			PreSeason:    Window{StartDate: "2021-02-23", EndDate: "2021-03-21"},
			Pennant:      Window{StartDate: "2021-03-26", EndDate: "2021-10-30"},
			Climax:       Window{StartDate: "2021-11-06", EndDate: "2021-11-13"},
			Championship: Window{StartDate: "2021-11-20", EndDate: "2021-11-27"},
		},
		"2022": {
			PreSeason:    Window{StartDate: "2022-02-19", EndDate: "2022-03-21"},
			Pennant:      Window{StartDate: "2022-03-25", EndDate: "2022-10-02"},
			Climax:       Window{StartDate: "2022-10-08", EndDate: "2022-10-15"},
			Championship: Window{StartDate: "2022-10-22", EndDate: "2022-10-30"},
		},
	}
}
