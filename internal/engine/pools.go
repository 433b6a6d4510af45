package engine

import (
	"slices"

	"github.com/okian/lanes/internal/domain/model"
)

// Pools splits records into one PoolInput per selected team-season.
// Repeated team-seasons collapse into one pool and pools come out in
// selection-list order (model.CompareTeamSeasons), so neither the order nor
// the repetition of the caller's selection changes relay placements.
// Record order within a pool follows records.
func Pools(records []model.TimeRecord, teams []model.TeamSeason) []PoolInput {
	uniq := make([]model.TeamSeason, 0, len(teams))
	seen := make(map[string]struct{}, len(teams))
	for _, ts := range teams {
		if _, dup := seen[ts.Key()]; dup {
			continue
		}
		seen[ts.Key()] = struct{}{}
		uniq = append(uniq, ts)
	}
	slices.SortStableFunc(uniq, model.CompareTeamSeasons)

	out := make([]PoolInput, len(uniq))
	index := make(map[string]int, len(uniq))
	for i, ts := range uniq {
		out[i].TeamSeason = ts
		index[ts.Key()] = i
	}
	for _, rec := range records {
		key := model.TeamSeason{TeamID: rec.TeamID, Season: rec.Season}.Key()
		if i, ok := index[key]; ok {
			out[i].Records = append(out[i].Records, rec)
		}
	}
	return out
}
