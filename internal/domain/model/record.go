// Package model contains domain models passed between layers.
package model

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTeamSeason is returned for malformed "<team>:<season>" keys.
var ErrInvalidTeamSeason = errors.New("invalid team-season key")

// RecordID identifies a stored time record.
type RecordID int64

// AthleteID identifies a swimmer.
type AthleteID int64

// TeamID identifies a team.
type TeamID int64

// TimeRecord is one recorded swim. Records are immutable once stored;
// everything downstream of the store works on copies.
type TimeRecord struct {
	ID          RecordID
	AthleteID   AthleteID
	AthleteName string
	TeamID      TeamID
	TeamName    string
	Event       Event   // e.g. "100 Free"
	Season      int     // season year
	Seconds     float64 // elapsed time, finite and non-negative
	Meet        string
	Date        time.Time
}

// TeamSeason is one selectable team/season combination. Every relay pool
// belongs to exactly one of them.
type TeamSeason struct {
	TeamID   TeamID
	TeamName string
	Season   int
}

// Key returns the "<team>:<season>" form used by selection lists.
func (ts TeamSeason) Key() string {
	return strconv.FormatInt(int64(ts.TeamID), 10) + ":" + strconv.Itoa(ts.Season)
}

// Label returns the display label, e.g. "2024 Stanford".
func (ts TeamSeason) Label() string {
	return strconv.Itoa(ts.Season) + " " + ts.TeamName
}

// CompareTeamSeasons orders team-seasons the way selection lists show
// them: newest season first, then team name, then team id.
func CompareTeamSeasons(a, b TeamSeason) int {
	if a.Season != b.Season {
		return cmp.Compare(b.Season, a.Season)
	}
	if c := cmp.Compare(a.TeamName, b.TeamName); c != 0 {
		return c
	}
	return cmp.Compare(a.TeamID, b.TeamID)
}

// Matches reports whether rec was swum for this team in this season.
func (ts TeamSeason) Matches(rec TimeRecord) bool {
	return rec.TeamID == ts.TeamID && rec.Season == ts.Season
}

// ParseTeamSeasonKey splits a "<team>:<season>" key.
func ParseTeamSeasonKey(key string) (TeamID, int, error) {
	team, season, ok := strings.Cut(strings.TrimSpace(key), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTeamSeason, key)
	}
	id, err := strconv.ParseInt(team, 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTeamSeason, key)
	}
	yr, err := strconv.Atoi(season)
	if err != nil || yr <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTeamSeason, key)
	}
	return TeamID(id), yr, nil
}
