// Package exclusion removes caller-excluded time records before ranking.
package exclusion

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/lanes/internal/domain/model"
)

// ErrInvalidID is returned when an exclusion list contains a non-numeric id.
var ErrInvalidID = errors.New("invalid excluded time id")

// Set holds excluded record ids. The zero value is an empty set.
type Set struct {
	ids map[model.RecordID]struct{}
}

// New builds a set from ids.
func New(ids ...model.RecordID) Set {
	s := Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s *Set) Add(id model.RecordID) {
	if s.ids == nil {
		s.ids = make(map[model.RecordID]struct{})
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is excluded.
func (s Set) Has(id model.RecordID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of excluded ids.
func (s Set) Len() int { return len(s.ids) }

// IDs returns the excluded ids in ascending order.
func (s Set) IDs() []model.RecordID {
	out := make([]model.RecordID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Union returns a new set holding the ids of both sets.
func (s Set) Union(other Set) Set {
	out := New(s.IDs()...)
	for id := range other.ids {
		out.Add(id)
	}
	return out
}

// Filter returns the records whose id is not in excluded, in input order.
// The input slice is never modified.
func Filter(records []model.TimeRecord, excluded Set) []model.TimeRecord {
	out := make([]model.TimeRecord, 0, len(records))
	for _, rec := range records {
		if excluded.Has(rec.ID) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Parse reads a comma separated id list such as "4, 9,12".
// Blank items are skipped.
func Parse(raw string) (Set, error) {
	s := Set{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return Set{}, fmt.Errorf("%w: %q", ErrInvalidID, part)
		}
		s.Add(model.RecordID(id))
	}
	return s, nil
}
