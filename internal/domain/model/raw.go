package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/lanes/internal/domain/timefmt"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// ErrInvalidRecord is returned by Normalize for records that cannot be
// stored.
var ErrInvalidRecord = errors.New("invalid time record")

// RawRecord is a time record as submitted over HTTP or read from an
// import file. Time takes precedence over Seconds when both are set.
type RawRecord struct {
	ID          int64   `json:"id,omitempty" yaml:"id,omitempty"`
	AthleteID   int64   `json:"athlete_id" yaml:"athlete_id"`
	AthleteName string  `json:"athlete_name" yaml:"athlete_name"`
	TeamID      int64   `json:"team_id" yaml:"team_id"`
	TeamName    string  `json:"team_name" yaml:"team_name"`
	Season      int     `json:"season" yaml:"season"`
	Event       string  `json:"event" yaml:"event"`
	Time        string  `json:"time,omitempty" yaml:"time,omitempty"`
	Seconds     float64 `json:"seconds,omitempty" yaml:"seconds,omitempty"`
	Meet        string  `json:"meet,omitempty" yaml:"meet,omitempty"`
	Date        string  `json:"date,omitempty" yaml:"date,omitempty"`
}

// Normalize validates r and converts it to a TimeRecord: the event name is
// canonicalised, the time string parsed and the date read as YYYY-MM-DD.
func (r RawRecord) Normalize() (TimeRecord, error) {
	if r.AthleteID <= 0 {
		return TimeRecord{}, fmt.Errorf("%w: athlete_id must be positive", ErrInvalidRecord)
	}
	if r.TeamID <= 0 {
		return TimeRecord{}, fmt.Errorf("%w: team_id must be positive", ErrInvalidRecord)
	}
	if r.Season <= 0 {
		return TimeRecord{}, fmt.Errorf("%w: season must be positive", ErrInvalidRecord)
	}
	ev, err := NormalizeEvent(r.Event)
	if err != nil {
		return TimeRecord{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	secs, err := r.seconds()
	if err != nil {
		return TimeRecord{}, err
	}

	var date time.Time
	if d := strings.TrimSpace(r.Date); d != "" {
		date, err = time.Parse(DateLayout, d)
		if err != nil {
			return TimeRecord{}, fmt.Errorf("%w: date %q", ErrInvalidRecord, r.Date)
		}
	}

	return TimeRecord{
		ID:          RecordID(r.ID),
		AthleteID:   AthleteID(r.AthleteID),
		AthleteName: strings.TrimSpace(r.AthleteName),
		TeamID:      TeamID(r.TeamID),
		TeamName:    strings.TrimSpace(r.TeamName),
		Event:       ev,
		Season:      r.Season,
		Seconds:     secs,
		Meet:        strings.TrimSpace(r.Meet),
		Date:        date,
	}, nil
}

func (r RawRecord) seconds() (float64, error) {
	if strings.TrimSpace(r.Time) != "" {
		secs, err := timefmt.Parse(r.Time)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		return secs, nil
	}
	if math.IsNaN(r.Seconds) || math.IsInf(r.Seconds, 0) || r.Seconds <= 0 {
		return 0, fmt.Errorf("%w: missing or invalid time", ErrInvalidRecord)
	}
	return r.Seconds, nil
}

// Raw converts a stored record back to its wire form.
func (rec TimeRecord) Raw() RawRecord {
	raw := RawRecord{
		ID:          int64(rec.ID),
		AthleteID:   int64(rec.AthleteID),
		AthleteName: rec.AthleteName,
		TeamID:      int64(rec.TeamID),
		TeamName:    rec.TeamName,
		Season:      rec.Season,
		Event:       string(rec.Event),
		Time:        timefmt.Format(rec.Seconds),
		Seconds:     rec.Seconds,
		Meet:        rec.Meet,
	}
	if !rec.Date.IsZero() {
		raw.Date = rec.Date.Format(DateLayout)
	}
	return raw
}
