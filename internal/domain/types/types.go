// Package types contains common types used across the application
package types

// RankedEntry is one placed swim in an individual event ranking.
type RankedEntry struct {
	TimeID    int64   `json:"time_id" yaml:"time_id"`
	Placement int     `json:"placement" yaml:"placement"`
	AthleteID int64   `json:"athlete_id" yaml:"athlete_id"`
	Name      string  `json:"name" yaml:"name"`
	Team      string  `json:"team" yaml:"team"`
	Season    int     `json:"season" yaml:"season"`
	Seconds   float64 `json:"seconds" yaml:"seconds"`
	Display   string  `json:"display" yaml:"display"`
	Points    int     `json:"points" yaml:"points"`
}

// RelayRow is one leg of a placed relay squad, flattened for display.
// Points is nil when squads were ranked without scoring.
type RelayRow struct {
	TimeID       int64   `json:"time_id" yaml:"time_id"`
	ComboRank    int     `json:"combo_rank" yaml:"combo_rank"`
	Team         string  `json:"team" yaml:"team"`
	Season       int     `json:"season" yaml:"season"`
	Stroke       string  `json:"stroke" yaml:"stroke"`
	AthleteID    int64   `json:"athlete_id" yaml:"athlete_id"`
	Name         string  `json:"name" yaml:"name"`
	Split        float64 `json:"split" yaml:"split"`
	SplitDisplay string  `json:"split_display" yaml:"split_display"`
	Total        float64 `json:"total" yaml:"total"`
	TotalDisplay string  `json:"total_display" yaml:"total_display"`
	Points       *int    `json:"points" yaml:"points"`
}

// TeamSeasonChoice is one selectable team/season pair.
type TeamSeasonChoice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// EventChoice is one selectable individual event or relay.
type EventChoice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Relay bool   `json:"relay"`
}

// Rankings is the answer to one ranking request. Entries is set for
// individual events and Rows for relays.
type Rankings struct {
	Event   string        `json:"event" yaml:"event"`
	Title   string        `json:"title" yaml:"title"`
	Relay   bool          `json:"relay" yaml:"relay"`
	Mode    string        `json:"mode" yaml:"mode"`
	TopN    int           `json:"top_n" yaml:"top_n"`
	Entries []RankedEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Rows    []RelayRow    `json:"rows,omitempty" yaml:"rows,omitempty"`
}
