// Package repository keeps time records ordered for ranking.
package repository

import (
	"context"

	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
)

// RecordQuery selects records. Empty Events or TeamSeasons match
// everything.
type RecordQuery struct {
	Events      []model.Event
	TeamSeasons []model.TeamSeason
	Exclude     exclusion.Set
}

// Store provides read/write access to time records.
type Store interface {
	// Insert stores rec and returns it with its id. A zero id is replaced
	// by the next free one; an id already in use fails with ErrDuplicateID.
	Insert(ctx context.Context, rec model.TimeRecord) (model.TimeRecord, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id model.RecordID) (model.TimeRecord, error)

	// Delete removes a record. Unknown ids fail with ErrNotFound.
	Delete(ctx context.Context, id model.RecordID) error

	// Query returns matching records ordered by elapsed time, then id.
	Query(ctx context.Context, q RecordQuery) ([]model.TimeRecord, error)

	// TeamSeasons lists every team-season with at least one record,
	// newest season first and then by team name.
	TeamSeasons(ctx context.Context) ([]model.TeamSeason, error)

	// Events lists the events that have records, in sorted order.
	Events(ctx context.Context) ([]model.Event, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
