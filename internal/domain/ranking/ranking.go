// Package ranking places swimmers in an individual event.
package ranking

import (
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/domain/scoring"
	"github.com/okian/lanes/internal/domain/timefmt"
	"github.com/okian/lanes/internal/domain/types"
)

// Rank keeps each athlete's first record and places the first topN of
// them. records must already be ordered fastest first; ties keep their
// input order, so the ranking never re-sorts.
func Rank(records []model.TimeRecord, topN int) []types.RankedEntry {
	if topN < 1 {
		return []types.RankedEntry{}
	}
	seen := make(map[model.AthleteID]struct{}, topN)
	out := make([]types.RankedEntry, 0, min(topN, len(records)))
	for _, rec := range records {
		if _, dup := seen[rec.AthleteID]; dup {
			continue
		}
		seen[rec.AthleteID] = struct{}{}
		placement := len(out) + 1
		out = append(out, types.RankedEntry{
			TimeID:    int64(rec.ID),
			Placement: placement,
			AthleteID: int64(rec.AthleteID),
			Name:      rec.AthleteName,
			Team:      rec.TeamName,
			Season:    rec.Season,
			Seconds:   rec.Seconds,
			Display:   timefmt.Format(rec.Seconds),
			Points:    scoring.Individual.Points(placement),
		})
		if len(out) == topN {
			break
		}
	}
	return out
}
