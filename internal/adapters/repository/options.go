package repository

import (
	"time"

	"github.com/okian/lanes/internal/domain/model"
)

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMetricsUpdateInterval sets how often the record count gauge is
// refreshed.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithFirstID sets the id handed to the first record inserted without one.
func WithFirstID(id model.RecordID) Option {
	return func(s *TreapStore) {
		if id > 0 {
			s.nextID = id
		}
	}
}
