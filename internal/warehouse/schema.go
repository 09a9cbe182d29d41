// Package warehouse projects extracted records onto the lake table schemas and
// defines the append-only sink contract.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logical table names.
const (
	TableGame   = "lake_game"
	TableScore  = "lake_score"
	TablePitch  = "lake_pitch"
	TablePlayer = "lake_player"
)

// Columns stamped on every row at assembly time.
const (
	ColumnFlowID       = "flow_id"
	ColumnExecDatetime = "exec_datetime"
)

// Column is one warehouse column.
type Column struct {
	Name string `mapstructure:"name" yaml:"name"`
	Type string `mapstructure:"type" yaml:"type"`
}

// TableSchema names a destination table and its canonical column order.
type TableSchema struct {
	Name    string   `mapstructure:"-"`
	Dataset string   `mapstructure:"dataset" yaml:"dataset"`
	Table   string   `mapstructure:"table" yaml:"table"`
	Columns []Column `mapstructure:"columns" yaml:"columns"`
}

// ColumnNames returns the column names in upload order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks that a schema can be written to.
func (s TableSchema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("table %s: table name is required", s.Name)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("table %s: at least one column is required", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column name is required", s.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("table %s: duplicate column %q", s.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// Sink appends schema-ordered rows to a destination table. Appends never
// update or deduplicate existing rows.
type Sink interface {
	Append(ctx context.Context, schema TableSchema, rows [][]any) error
}

// FlowIDLayout formats run identifiers.
const FlowIDLayout = "20060102_150405"

// FlowID derives the run identifier from the run start time.
func FlowID(t time.Time) string {
	return t.Format(FlowIDLayout)
}

// DefaultSchemas returns the built-in lake table layouts.
func DefaultSchemas() map[string]TableSchema {
	return map[string]TableSchema{
		TableGame: {
			Name: TableGame, Dataset: "lake", Table: TableGame,
			Columns: columns(
				"game_id:STRING", "game_date:DATE", "game_status:STRING", "game_series:STRING",
				"game_title:STRING", "stadium:STRING", "game_start_time:STRING",
				"team_home_id:STRING", "team_away_id:STRING", "team_home_name:STRING", "team_away_name:STRING",
				"score_home:INTEGER", "score_away:INTEGER", "hit_home:INTEGER", "hit_away:INTEGER",
				"error_home:INTEGER", "error_away:INTEGER", "game_result:STRING",
				"pitcher_win_id:STRING", "pitcher_lose_id:STRING", "pitcher_save_id:STRING",
				"starting_pitcher_home_id:STRING", "starting_pitcher_away_id:STRING",
				"umpire_plate:STRING", "umpire_first:STRING", "umpire_second:STRING", "umpire_third:STRING",
				"audience_num:INTEGER", "game_time:STRING",
				"flow_id:STRING", "exec_datetime:TIMESTAMP",
			),
		},
		TableScore: {
			Name: TableScore, Dataset: "lake", Table: TableScore,
			Columns: columns(
				"game_id:STRING", "page_index:STRING", "sequence:INTEGER", "inning:INTEGER", "half:STRING",
				"batter_id:STRING", "batter_hand:STRING", "pitcher_id:STRING", "pitcher_hand:STRING",
				"result:STRING", "runner_1b:STRING", "runner_2b:STRING", "runner_3b:STRING", "hit_type:STRING",
				"flow_id:STRING", "exec_datetime:TIMESTAMP",
			),
		},
		TablePitch: {
			Name: TablePitch, Dataset: "lake", Table: TablePitch,
			Columns: columns(
				"game_id:STRING", "page_index:STRING", "pitch_num:INTEGER", "pitch_type:STRING",
				"speed:INTEGER", "pitch_result:STRING", "location_x:INTEGER", "location_y:INTEGER",
				"flow_id:STRING", "exec_datetime:TIMESTAMP",
			),
		},
		TablePlayer: {
			Name: TablePlayer, Dataset: "lake", Table: TablePlayer,
			Columns: columns(
				"player_id:STRING", "player_name:STRING", "player_name_kana:STRING", "number:STRING",
				"birth_day:DATE", "birth_place:STRING", "height:INTEGER", "weight:INTEGER",
				"blood_type:STRING", "throw_batting:STRING", "draft_year:STRING", "pro_age:INTEGER",
				"career:STRING", "profile_text:STRING", "img_url:STRING",
				"flow_id:STRING", "exec_datetime:TIMESTAMP",
			),
		},
	}
}

func columns(specs ...string) []Column {
	out := make([]Column, 0, len(specs))
	for _, spec := range specs {
		name, typ, _ := strings.Cut(spec, ":")
		out = append(out, Column{Name: name, Type: typ})
	}
	return out
}
