package relay

import (
	"github.com/okian/lanes/internal/domain/model"
)

// AssembleScoredFlat splits the fastest eight swims into an A squad
// (ranks 1-4) and a B squad (ranks 5-8). Either is omitted when the pool
// is too small to fill it.
func AssembleScoredFlat(pool []Entry) []Squad {
	sorted := sortedBySeconds(pool)
	var squads []Squad
	if len(sorted) >= SquadSize {
		squads = append(squads, flatSquad(sorted[:SquadSize], TypeA))
	}
	if len(sorted) >= 2*SquadSize {
		squads = append(squads, flatSquad(sorted[SquadSize:2*SquadSize], TypeB))
	}
	return squads
}

func flatSquad(entries []Entry, typ Type) Squad {
	var legs [SquadSize]Leg
	for i := range legs {
		legs[i] = flatLeg(entries[i])
	}
	return newSquad(legs, typ)
}

// AssembleScoredMedley returns the optimal A squad and the optimal B squad
// drawn from the athletes left once A is removed.
func AssembleScoredMedley(pool []MedleyEntry) []Squad {
	a, ok := BestMedley(pool)
	if !ok {
		return nil
	}
	a.Type = TypeA
	squads := []Squad{a}

	used := make(map[model.AthleteID]bool, SquadSize)
	for _, l := range a.Legs {
		used[l.AthleteID] = true
	}
	rest := make([]MedleyEntry, 0, len(pool))
	for _, e := range pool {
		if !used[e.AthleteID] {
			rest = append(rest, e)
		}
	}
	if b, ok := BestMedley(rest); ok {
		b.Type = TypeB
		squads = append(squads, b)
	}
	return squads
}

// BestMedley searches every ordered selection of four distinct athletes
// (athlete i swims slot i) and returns the squad with the lowest total.
// Selections are visited in lexicographic index order and only a strictly
// lower total replaces the current best, so ties go to the first selection
// visited. A branch is cut once its partial sum reaches the best total,
// which cannot change the answer because times are non-negative.
func BestMedley(pool []MedleyEntry) (Squad, bool) {
	n := len(pool)
	if n < SquadSize {
		return Squad{}, false
	}
	times := make([][SquadSize]float64, n)
	for i, e := range pool {
		for slot, stroke := range model.MedleyOrder {
			times[i][slot] = e.Times[stroke]
		}
	}

	var best [SquadSize]int
	bestTotal := 0.0
	found := false
	cut := func(partial float64) bool { return found && partial >= bestTotal }

	for a := 0; a < n; a++ {
		p1 := times[a][0]
		if cut(p1) {
			continue
		}
		for b := 0; b < n; b++ {
			if b == a {
				continue
			}
			p2 := p1 + times[b][1]
			if cut(p2) {
				continue
			}
			for c := 0; c < n; c++ {
				if c == a || c == b {
					continue
				}
				p3 := p2 + times[c][2]
				if cut(p3) {
					continue
				}
				for d := 0; d < n; d++ {
					if d == a || d == b || d == c {
						continue
					}
					total := p3 + times[d][3]
					if !found || total < bestTotal {
						best = [SquadSize]int{a, b, c, d}
						bestTotal = total
						found = true
					}
				}
			}
		}
	}

	var legs [SquadSize]Leg
	for slot, stroke := range model.MedleyOrder {
		legs[slot] = medleyLeg(pool[best[slot]], stroke)
	}
	return newSquad(legs, ""), true
}
