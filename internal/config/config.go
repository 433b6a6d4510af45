// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers a YAML file, a .env file and the environment on top.
// - Errors returned by this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many content keys the deduper remembers.
	DedupeSize int `koanf:"dedupe_size"`

	// EngineParallelism caps how many team-season pools are assembled at once.
	EngineParallelism int `koanf:"engine_parallelism"`

	// DefaultTopN is used when a ranking request has no top_n.
	DefaultTopN int `koanf:"default_top_n"`

	// MaxTopN caps top_n on ranking requests. It cannot exceed 16.
	MaxTopN int `koanf:"max_top_n"`
}

// maxScoringPlaces is the length of the placement point tables.
const maxScoringPlaces = 16

// New creates a Config with defaults. Context is accepted first to follow
// the project convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        500_000,
		EngineParallelism: runtime.NumCPU(),
		DefaultTopN:       8,
		MaxTopN:           maxScoringPlaces,
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.EngineParallelism < 1:
		return fmt.Errorf("%w: engine_parallelism must be positive", ErrInvalidConfig)
	case c.MaxTopN < 1 || c.MaxTopN > maxScoringPlaces:
		return fmt.Errorf("%w: max_top_n must be in [1,%d]", ErrInvalidConfig, maxScoringPlaces)
	case c.DefaultTopN < 1 || c.DefaultTopN > c.MaxTopN:
		return fmt.Errorf("%w: default_top_n must be in [1,max_top_n]", ErrInvalidConfig)
	}
	return nil
}
