package engine

import (
	"errors"

	"github.com/okian/lanes/internal/domain/model"
)

var (
	// ErrInvalidTopN is returned when top_n is outside [1, MaxTopN].
	ErrInvalidTopN = errors.New("top_n out of range")
	// ErrInvalidMode is returned for a scoring mode other than unscored or scored.
	ErrInvalidMode = errors.New("invalid scoring mode")
	// ErrUnknownEvent is returned for a name that is neither an individual
	// event nor a relay type.
	ErrUnknownEvent = model.ErrUnknownEvent
	// ErrNoTeamSeason is returned when no team-season was selected.
	ErrNoTeamSeason = errors.New("no team-season selected")
)
