package relay

import (
	"github.com/okian/lanes/internal/domain/model"
)

// AssembleGreedyFlat repeatedly takes the four fastest remaining swims as
// one squad and removes their athletes from the pool, while at least four
// swims remain and fewer than limit squads exist. limit <= 0 means no cap.
//
// The pool is sorted once; removal is tracked by athlete so every later
// duplicate of a used athlete disappears with them. Duplicates among the
// four fastest are not skipped: one athlete may fill two legs of a squad.
func AssembleGreedyFlat(pool []Entry, limit int) []Squad {
	sorted := sortedBySeconds(pool)
	used := make(map[model.AthleteID]bool)
	remaining := len(sorted)

	var squads []Squad
	for remaining >= SquadSize && (limit <= 0 || len(squads) < limit) {
		var legs [SquadSize]Leg
		n := 0
		for _, e := range sorted {
			if used[e.AthleteID] {
				continue
			}
			legs[n] = flatLeg(e)
			n++
			if n == SquadSize {
				break
			}
		}
		squads = append(squads, newSquad(legs, ""))

		for _, l := range legs {
			used[l.AthleteID] = true
		}
		remaining = 0
		for _, e := range sorted {
			if !used[e.AthleteID] {
				remaining++
			}
		}
	}
	return squads
}

// AssembleGreedyMedley builds squads slot by slot: for Back, Breast, Fly
// and Free in turn it picks the remaining athlete with the lowest time in
// that stroke (earliest in pool order on ties) and removes them at once.
// This is a per-slot greedy choice, not a minimum total assignment, and
// can produce a slower squad than the optimum found by BestMedley.
func AssembleGreedyMedley(pool []MedleyEntry, limit int) []Squad {
	alive := make([]bool, len(pool))
	for i := range alive {
		alive[i] = true
	}
	remaining := len(pool)

	var squads []Squad
	for remaining >= SquadSize && (limit <= 0 || len(squads) < limit) {
		var legs [SquadSize]Leg
		for slot, stroke := range model.MedleyOrder {
			best := -1
			for i, e := range pool {
				if !alive[i] {
					continue
				}
				if best < 0 || e.Times[stroke] < pool[best].Times[stroke] {
					best = i
				}
			}
			legs[slot] = medleyLeg(pool[best], stroke)
			alive[best] = false
			remaining--
		}
		squads = append(squads, newSquad(legs, ""))
	}
	return squads
}
