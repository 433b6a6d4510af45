package engine

import (
	"fmt"

	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
)

// MaxTopN is the largest accepted top_n. Both point tables have this many
// scoring places.
const MaxTopN = 16

// Mode selects the relay assembly and placement policy.
type Mode string

// Scoring modes.
const (
	Unscored Mode = "unscored"
	Scored   Mode = "scored"
)

// ParseMode returns the mode named s. An empty string means Unscored.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Unscored:
		return Unscored, nil
	case Scored:
		return Scored, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Params is everything one ranking request asks of the engine.
type Params struct {
	// Event is an individual event ("100 Free") or a relay type
	// ("relay_medley").
	Event       string
	TopN        int
	Mode        Mode
	TeamSeasons []model.TeamSeason
	Exclusions  exclusion.Set
}

// Validate checks the parameters once at the boundary.
func (p Params) Validate() error {
	if p.TopN < 1 || p.TopN > MaxTopN {
		return fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidTopN, p.TopN, MaxTopN)
	}
	if p.Mode != Unscored && p.Mode != Scored {
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	if !p.IsRelay() && !model.IsIndividual(model.Event(p.Event)) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, p.Event)
	}
	if len(p.TeamSeasons) == 0 {
		return ErrNoTeamSeason
	}
	return nil
}

// IsRelay reports whether Event names a relay type.
func (p Params) IsRelay() bool {
	_, ok := model.ParseRelayType(p.Event)
	return ok
}

// RelayType returns Event as a relay type. It is only meaningful when
// IsRelay is true.
func (p Params) RelayType() model.RelayType {
	return model.RelayType(p.Event)
}

// Events returns the individual events whose records the request needs.
func (p Params) Events() []model.Event {
	if p.IsRelay() {
		return p.RelayType().LegEvents()
	}
	return []model.Event{model.Event(p.Event)}
}

// selected reports whether rec belongs to one of the chosen team-seasons.
func (p Params) selected(rec model.TimeRecord) bool {
	for _, ts := range p.TeamSeasons {
		if ts.Matches(rec) {
			return true
		}
	}
	return false
}
