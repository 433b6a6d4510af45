// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/lanes/internal/adapters/mq/queue"
	"github.com/okian/lanes/internal/adapters/mq/worker"
	"github.com/okian/lanes/internal/adapters/repository"
	"github.com/okian/lanes/internal/domain/dedupe"
	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/domain/types"
	"github.com/okian/lanes/internal/engine"
	"github.com/okian/lanes/pkg/logger"
	"github.com/okian/lanes/pkg/metrics"
)

// SubmitStatus reports what happened to a submitted record.
type SubmitStatus string

// Submit outcomes.
const (
	Accepted  SubmitStatus = "accepted"
	Duplicate SubmitStatus = "duplicate"
)

// RankingQuery is a ranking request as it arrives from a client: team
// seasons are "<team>:<season>" keys and exclusions a comma separated id
// list. A zero TopN means the configured default.
type RankingQuery struct {
	Event   string
	Teams   []string
	TopN    int
	Mode    string
	Exclude string
}

// poolObserver reports relay assembly to Prometheus.
type poolObserver struct{}

func (poolObserver) PoolAssembled(rt model.RelayType, mode engine.Mode, poolSize, squads int) {
	metrics.RecordPoolAssembled(string(rt), string(mode), poolSize, squads)
}

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.TreapStore
	deduper    dedupe.Deduper
	queue      *queue.InMemoryQueue
	workerPool *worker.Pool
	engine     *engine.Engine

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	parallelism int
	defaultTopN int
	maxTopN     int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many content keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEngineParallelism caps concurrent relay pool assembly.
func WithEngineParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithTopN sets the default and maximum top_n of ranking requests.
func WithTopN(def, maxN int) Option {
	return func(s *Service) {
		if maxN > 0 && maxN <= engine.MaxTopN && def > 0 && def <= maxN {
			s.defaultTopN = def
			s.maxTopN = maxN
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  500_000,
		parallelism: runtime.NumCPU(),
		defaultTopN: 8,
		maxTopN:     engine.MaxTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.engine = engine.New(
		engine.WithParallelism(s.parallelism),
		engine.WithObserver(poolObserver{}),
	)
	s.workerPool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithReleaser(s.deduper),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("parallelism", s.parallelism),
	)
	return nil
}

// Stop drains the ingestion queue and releases the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ranking service...")

	var errs []error
	if err := s.workerPool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
	return errors.Join(errs...)
}

// contentKey identifies a swim independent of the id it will be stored
// under.
func contentKey(rec model.TimeRecord) string {
	date := ""
	if !rec.Date.IsZero() {
		date = rec.Date.Format(model.DateLayout)
	}
	return dedupe.Key(
		strconv.FormatInt(int64(rec.AthleteID), 10),
		string(rec.Event),
		strconv.FormatFloat(rec.Seconds, 'f', 2, 64),
		date,
		strconv.Itoa(rec.Season),
	)
}

// Submit validates raw and queues it for storage. A record whose content
// was already submitted is reported as Duplicate and dropped.
func (s *Service) Submit(ctx context.Context, raw model.RawRecord) (SubmitStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", ErrNotStarted
	}

	metrics.RecordSubmitted()
	rec, err := raw.Normalize()
	if err != nil {
		metrics.RecordRejected("invalid")
		return "", err
	}

	key := contentKey(rec)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicate()
		s.logger.Debug(ctx, "duplicate record skipped", logger.String("key", key))
		return Duplicate, nil
	}

	if err := s.queue.Enqueue(ctx, queue.Item{Key: key, Record: rec}); err != nil {
		s.deduper.Unrecord(ctx, key)
		if errors.Is(err, queue.ErrFull) {
			metrics.RecordRejected("backpressure")
			return "", fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		metrics.RecordRejected("queue")
		return "", err
	}
	s.logger.Debug(ctx, "record queued",
		logger.Int64("athlete", int64(rec.AthleteID)),
		logger.String("event", string(rec.Event)),
		logger.Float64("seconds", rec.Seconds),
	)
	return Accepted, nil
}

// Delete removes a stored record.
func (s *Service) Delete(ctx context.Context, id model.RecordID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.deduper.Unrecord(ctx, contentKey(rec))
	return nil
}

// ResolveTeamSeasons maps "<team>:<season>" keys to the team-seasons held
// in the store. Repeated keys are dropped and the result follows the
// selection-list order, not the order of keys.
func (s *Service) ResolveTeamSeasons(ctx context.Context, keys []string) ([]model.TeamSeason, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.resolveTeamSeasons(ctx, keys)
}

func (s *Service) resolveTeamSeasons(ctx context.Context, keys []string) ([]model.TeamSeason, error) {
	known, err := s.store.TeamSeasons(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]model.TeamSeason, len(known))
	for _, ts := range known {
		byKey[ts.Key()] = ts
	}

	out := make([]model.TeamSeason, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		team, season, err := model.ParseTeamSeasonKey(k)
		if err != nil {
			return nil, err
		}
		norm := model.TeamSeason{TeamID: team, Season: season}.Key()
		ts, ok := byKey[norm]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTeamSeason, k)
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, ts)
	}
	slices.SortFunc(out, model.CompareTeamSeasons)
	return out, nil
}

// Rankings answers one ranking request: an individual event ranking or a
// relay squad listing, depending on q.Event.
func (s *Service) Rankings(ctx context.Context, q RankingQuery) (types.Rankings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Rankings{}, ErrNotStarted
	}

	p, err := s.params(ctx, q)
	if err != nil {
		return types.Rankings{}, err
	}

	start := time.Now()
	records, err := s.store.Query(ctx, repository.RecordQuery{
		Events:      p.Events(),
		TeamSeasons: p.TeamSeasons,
		Exclude:     p.Exclusions,
	})
	if err != nil {
		return types.Rankings{}, err
	}

	out := types.Rankings{Event: p.Event, Relay: p.IsRelay(), Mode: string(p.Mode), TopN: p.TopN}
	kind := "individual"
	if p.IsRelay() {
		kind = "relay"
		out.Title = p.RelayType().Title()
		out.Rows, err = s.engine.Relay(engine.Pools(records, p.TeamSeasons), p)
	} else {
		out.Title = p.Event
		out.Entries, err = s.engine.Individual(records, p)
	}
	if err != nil {
		return types.Rankings{}, err
	}

	metrics.RecordRanking(kind, string(p.Mode), float64(time.Since(start).Microseconds())/1000)
	s.logger.Debug(ctx, "rankings computed",
		logger.String("event", p.Event),
		logger.String("mode", string(p.Mode)),
		logger.Int("teamSeasons", len(p.TeamSeasons)),
		logger.Int("records", len(records)),
		logger.Duration("took", time.Since(start)),
	)
	return out, nil
}

func (s *Service) params(ctx context.Context, q RankingQuery) (engine.Params, error) {
	mode, err := engine.ParseMode(q.Mode)
	if err != nil {
		return engine.Params{}, err
	}
	excl, err := exclusion.Parse(q.Exclude)
	if err != nil {
		return engine.Params{}, err
	}
	topN := q.TopN
	if topN == 0 {
		topN = s.defaultTopN
	}
	if topN > s.maxTopN {
		return engine.Params{}, fmt.Errorf("%w: %d above limit %d", engine.ErrInvalidTopN, topN, s.maxTopN)
	}
	teams, err := s.resolveTeamSeasons(ctx, q.Teams)
	if err != nil {
		return engine.Params{}, err
	}
	p := engine.Params{
		Event:       q.Event,
		TopN:        topN,
		Mode:        mode,
		TeamSeasons: teams,
		Exclusions:  excl,
	}
	return p, p.Validate()
}

// TeamSeasons lists the selectable team-seasons, newest season first.
func (s *Service) TeamSeasons(ctx context.Context) ([]types.TeamSeasonChoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	all, err := s.store.TeamSeasons(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.TeamSeasonChoice, len(all))
	for i, ts := range all {
		out[i] = types.TeamSeasonChoice{Key: ts.Key(), Label: ts.Label()}
	}
	return out, nil
}

// Events lists the individual events followed by the relays.
func (s *Service) Events(_ context.Context) []types.EventChoice {
	evs := model.IndividualEvents()
	rts := model.RelayTypes()
	out := make([]types.EventChoice, 0, len(evs)+len(rts))
	for _, ev := range evs {
		out = append(out, types.EventChoice{Key: string(ev), Label: string(ev)})
	}
	for _, rt := range rts {
		out = append(out, types.EventChoice{Key: string(rt), Label: rt.Title(), Relay: true})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"parallelism": s.parallelism,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["records"] = s.store.Count(ctx)
		stats["dedupeKeys"] = s.deduper.Size()
		stats["stored"] = s.workerPool.Stored()
		stats["failed"] = s.workerPool.Failed()
	}
	return stats
}
