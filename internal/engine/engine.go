// Package engine turns filtered time records into individual rankings and
// relay squads. It is a pure computation: it never performs I/O and never
// mutates its inputs.
package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/domain/ranking"
	"github.com/okian/lanes/internal/domain/relay"
	"github.com/okian/lanes/internal/domain/timefmt"
	"github.com/okian/lanes/internal/domain/types"
)

// Observer receives per-pool assembly figures. Implementations must be
// safe for concurrent use.
type Observer interface {
	PoolAssembled(rt model.RelayType, mode Mode, poolSize, squads int)
}

// PoolInput is the record set of one team-season. Records must be ordered
// fastest first; records of other team-seasons are ignored.
type PoolInput struct {
	TeamSeason model.TeamSeason
	Records    []model.TimeRecord
}

// Engine ranks swims and assembles relays.
type Engine struct {
	parallelism int
	observer    Observer
}

// New returns an engine that assembles pools sequentially unless
// WithParallelism says otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{parallelism: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithObserver reports every assembled pool to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Individual ranks records of p.Event. records must be ordered fastest
// first, with equal times in a stable order.
func (e *Engine) Individual(records []model.TimeRecord, p Params) ([]types.RankedEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsRelay() {
		return nil, ErrUnknownEvent
	}
	ev := model.Event(p.Event)
	eligible := make([]model.TimeRecord, 0, len(records))
	for _, rec := range exclusion.Filter(records, p.Exclusions) {
		if rec.Event == ev && p.selected(rec) {
			eligible = append(eligible, rec)
		}
	}
	return ranking.Rank(eligible, p.TopN), nil
}

// Relay assembles squads for every pool, ranks them across pools and
// returns one row per leg. Pools are independent, so they may be assembled
// concurrently; results are gathered by pool index and the output is the
// same as a sequential run.
func (e *Engine) Relay(pools []PoolInput, p Params) ([]types.RelayRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.IsRelay() {
		return nil, ErrUnknownEvent
	}
	rt := p.RelayType()

	perPool := make([][]relay.Squad, len(pools))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, in := range pools {
		i, in := i, in
		g.Go(func() error {
			perPool[i] = e.assemble(rt, in, p)
			return nil
		})
	}
	_ = g.Wait()

	var squads []relay.Squad
	for _, s := range perPool {
		squads = append(squads, s...)
	}

	var placed []relay.Placed
	if p.Mode == Scored {
		placed = relay.RankScored(squads, p.TopN)
	} else {
		placed = relay.RankUnscored(squads, p.TopN)
	}
	return Rows(placed), nil
}

func (e *Engine) assemble(rt model.RelayType, in PoolInput, p Params) []relay.Squad {
	records := make([]model.TimeRecord, 0, len(in.Records))
	for _, rec := range exclusion.Filter(in.Records, p.Exclusions) {
		if in.TeamSeason.Matches(rec) {
			records = append(records, rec)
		}
	}

	var (
		squads []relay.Squad
		size   int
	)
	if rt.IsMedley() {
		pool := relay.BuildMedleyPool(records)
		size = len(pool)
		if p.Mode == Scored {
			squads = relay.AssembleScoredMedley(pool)
		} else {
			squads = relay.AssembleGreedyMedley(pool, p.TopN)
		}
	} else {
		pool := relay.BuildFlatPool(records, rt.LegEvents()[0])
		size = len(pool)
		if p.Mode == Scored {
			squads = relay.AssembleScoredFlat(pool)
		} else {
			squads = relay.AssembleGreedyFlat(pool, p.TopN)
		}
	}
	relay.Stamp(squads, in.TeamSeason)
	if e.observer != nil {
		e.observer.PoolAssembled(rt, p.Mode, size, len(squads))
	}
	return squads
}

// Rows flattens placed squads into one row per leg, in squad then slot
// order.
func Rows(placed []relay.Placed) []types.RelayRow {
	rows := make([]types.RelayRow, 0, len(placed)*relay.SquadSize)
	for _, sq := range placed {
		total := timefmt.Format(sq.Total)
		for _, leg := range sq.Legs {
			rows = append(rows, types.RelayRow{
				TimeID:       int64(leg.TimeID),
				ComboRank:    sq.Rank,
				Team:         sq.Team,
				Season:       sq.Season,
				Stroke:       string(leg.Stroke),
				AthleteID:    int64(leg.AthleteID),
				Name:         leg.Name,
				Split:        leg.Split,
				SplitDisplay: timefmt.Format(leg.Split),
				Total:        sq.Total,
				TotalDisplay: total,
				Points:       sq.Points,
			})
		}
	}
	return rows
}
