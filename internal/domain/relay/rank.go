package relay

import (
	"cmp"
	"slices"

	"github.com/okian/lanes/internal/domain/scoring"
)

// scoredPerType is how many A squads and how many B squads can score.
const scoredPerType = 8

// Placed is a squad with its final rank. Points is nil for unscored
// rankings.
type Placed struct {
	Squad
	Rank   int
	Points *int
}

// RankUnscored orders squads from all pools by total time and keeps the
// first topN. Equal totals keep their input order.
func RankUnscored(squads []Squad, topN int) []Placed {
	ordered := byTotal(squads)
	ordered = ordered[:min(len(ordered), max(topN, 0))]
	out := make([]Placed, len(ordered))
	for i, s := range ordered {
		out[i] = Placed{Squad: s, Rank: i + 1}
	}
	return out
}

// RankScored ranks A squads and B squads separately, keeps the best eight
// of each, lists every kept A squad ahead of every B squad and awards relay
// points down the combined list, which is cut to topN.
func RankScored(squads []Squad, topN int) []Placed {
	var as, bs []Squad
	for _, s := range squads {
		switch s.Type {
		case TypeA:
			as = append(as, s)
		case TypeB:
			bs = append(bs, s)
		}
	}
	as = byTotal(as)
	bs = byTotal(bs)
	combined := append(as[:min(len(as), scoredPerType)], bs[:min(len(bs), scoredPerType)]...)
	combined = combined[:min(len(combined), max(topN, 0))]

	out := make([]Placed, len(combined))
	for i, s := range combined {
		pts := scoring.Relay.Points(i + 1)
		out[i] = Placed{Squad: s, Rank: i + 1, Points: &pts}
	}
	return out
}

func byTotal(squads []Squad) []Squad {
	out := slices.Clone(squads)
	slices.SortStableFunc(out, func(a, b Squad) int { return cmp.Compare(a.Total, b.Total) })
	return out
}
