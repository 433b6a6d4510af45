package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/lanes/internal/domain/model"
)

// Recognised CSV header names. Column order is free; unknown columns are
// ignored.
const (
	colID          = "id"
	colAthleteID   = "athlete_id"
	colAthleteName = "athlete_name"
	colTeamID      = "team_id"
	colTeamName    = "team_name"
	colSeason      = "season"
	colEvent       = "event"
	colTime        = "time"
	colSeconds     = "seconds"
	colMeet        = "meet"
	colDate        = "date"
)

var requiredColumns = []string{colAthleteID, colTeamID, colSeason, colEvent}

// ParseCSV reads records from a CSV file with a header row.
func ParseCSV(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadCSV, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadCSV, c)
		}
	}
	if _, hasTime := cols[colTime]; !hasTime {
		if _, hasSecs := cols[colSeconds]; !hasSecs {
			return nil, fmt.Errorf("%w: need a time or seconds column", ErrBadCSV)
		}
	}

	var out []model.RawRecord
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadCSV, line, err)
		}
		rec, err := csvRecord(cols, cells)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadCSV, line, err)
		}
		out = append(out, rec)
	}
}

func csvRecord(cols map[string]int, cells []string) (model.RawRecord, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	var (
		rec model.RawRecord
		err error
	)
	if s := get(colID); s != "" {
		if rec.ID, err = strconv.ParseInt(s, 10, 64); err != nil {
			return rec, fmt.Errorf("id %q", s)
		}
	}
	if rec.AthleteID, err = strconv.ParseInt(get(colAthleteID), 10, 64); err != nil {
		return rec, fmt.Errorf("athlete_id %q", get(colAthleteID))
	}
	if rec.TeamID, err = strconv.ParseInt(get(colTeamID), 10, 64); err != nil {
		return rec, fmt.Errorf("team_id %q", get(colTeamID))
	}
	if rec.Season, err = strconv.Atoi(get(colSeason)); err != nil {
		return rec, fmt.Errorf("season %q", get(colSeason))
	}
	if s := get(colSeconds); s != "" {
		if rec.Seconds, err = strconv.ParseFloat(s, 64); err != nil {
			return rec, fmt.Errorf("seconds %q", s)
		}
	}
	rec.AthleteName = get(colAthleteName)
	rec.TeamName = get(colTeamName)
	rec.Event = get(colEvent)
	rec.Time = get(colTime)
	rec.Meet = get(colMeet)
	rec.Date = get(colDate)
	return rec, nil
}
