package relay

import (
	"cmp"
	"slices"

	"github.com/okian/lanes/internal/domain/model"
)

// SquadSize is the number of legs in every relay.
const SquadSize = 4

// Type labels a scored squad.
type Type string

// Squad types. Unscored squads carry no type.
const (
	TypeA Type = "A"
	TypeB Type = "B"
)

// Leg is one athlete's swim within a squad.
type Leg struct {
	TimeID    model.RecordID
	AthleteID model.AthleteID
	Name      string
	Stroke    model.Stroke
	Split     float64
}

// Squad is a complete four-leg relay entry.
type Squad struct {
	Legs   [SquadSize]Leg
	Total  float64
	Type   Type
	Team   string
	Season int
}

// newSquad sums the legs in slot order.
func newSquad(legs [SquadSize]Leg, typ Type) Squad {
	total := 0.0
	for _, l := range legs {
		total += l.Split
	}
	return Squad{Legs: legs, Total: total, Type: typ}
}

// Stamp attaches the team label and season to every squad in place.
func Stamp(squads []Squad, ts model.TeamSeason) {
	for i := range squads {
		squads[i].Team = ts.Label()
		squads[i].Season = ts.Season
	}
}

// Athletes returns the athletes swimming in the squad in slot order.
func (s Squad) Athletes() []model.AthleteID {
	out := make([]model.AthleteID, SquadSize)
	for i, l := range s.Legs {
		out[i] = l.AthleteID
	}
	return out
}

func flatLeg(e Entry) Leg {
	return Leg{TimeID: e.TimeID, AthleteID: e.AthleteID, Name: e.Name, Stroke: model.Free, Split: e.Seconds}
}

func medleyLeg(e MedleyEntry, stroke model.Stroke) Leg {
	return Leg{TimeID: e.TimeIDs[stroke], AthleteID: e.AthleteID, Name: e.Name, Stroke: stroke, Split: e.Times[stroke]}
}

// sortedBySeconds returns a stable, fastest first copy of pool.
func sortedBySeconds(pool []Entry) []Entry {
	out := slices.Clone(pool)
	slices.SortStableFunc(out, func(a, b Entry) int { return cmp.Compare(a.Seconds, b.Seconds) })
	return out
}
