// Package relay builds relay pools from individual times and assembles
// squads from them.
package relay

import (
	"github.com/okian/lanes/internal/domain/model"
)

// Entry is one swim in a single-stroke pool.
type Entry struct {
	TimeID    model.RecordID
	AthleteID model.AthleteID
	Name      string
	Seconds   float64
}

// MedleyEntry holds one athlete's best time in each medley stroke.
type MedleyEntry struct {
	AthleteID model.AthleteID
	Name      string
	Times     map[model.Stroke]float64
	TimeIDs   map[model.Stroke]model.RecordID
}

// complete reports whether every medley slot has a time.
func (e *MedleyEntry) complete() bool {
	for _, s := range model.MedleyOrder {
		if _, ok := e.Times[s]; !ok {
			return false
		}
	}
	return true
}

// BuildFlatPool returns one entry per record of event ev, in input order.
// Records are not deduplicated by athlete here: if the source hands over
// two times for the same swimmer both stay in the pool.
func BuildFlatPool(records []model.TimeRecord, ev model.Event) []Entry {
	pool := make([]Entry, 0, len(records))
	for _, rec := range records {
		if rec.Event != ev {
			continue
		}
		pool = append(pool, Entry{
			TimeID:    rec.ID,
			AthleteID: rec.AthleteID,
			Name:      rec.AthleteName,
			Seconds:   rec.Seconds,
		})
	}
	return pool
}

// BuildMedleyPool collects each athlete's 100 Back, Breast, Fly and Free
// times. Strokes are read in slot order and records in input order, so the
// first (fastest) time per athlete and stroke wins and athletes keep the
// order in which they were first seen. Athletes missing any stroke are
// dropped.
func BuildMedleyPool(records []model.TimeRecord) []MedleyEntry {
	index := make(map[model.AthleteID]int)
	var entries []*MedleyEntry
	for _, stroke := range model.MedleyOrder {
		ev := model.MedleyEvent(stroke)
		for _, rec := range records {
			if rec.Event != ev {
				continue
			}
			i, ok := index[rec.AthleteID]
			if !ok {
				i = len(entries)
				index[rec.AthleteID] = i
				entries = append(entries, &MedleyEntry{
					AthleteID: rec.AthleteID,
					Name:      rec.AthleteName,
					Times:     make(map[model.Stroke]float64, len(model.MedleyOrder)),
					TimeIDs:   make(map[model.Stroke]model.RecordID, len(model.MedleyOrder)),
				})
			}
			e := entries[i]
			if _, seen := e.Times[stroke]; seen {
				continue
			}
			e.Times[stroke] = rec.Seconds
			e.TimeIDs[stroke] = rec.ID
		}
	}

	pool := make([]MedleyEntry, 0, len(entries))
	for _, e := range entries {
		if e.complete() {
			pool = append(pool, *e)
		}
	}
	return pool
}
