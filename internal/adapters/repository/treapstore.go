package repository

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: elapsed time ASC, then record id ASC. One treap is kept per
// event, so an in-order walk of a tree yields that event's records fastest
// first with a deterministic order among equal times.

// timeScale converts seconds to fixed point (nanoseconds).
const timeScale = 1_000_000_000

type timeFP int64

func toFixedPoint(secs float64) timeFP {
	scaled := math.Round(secs * timeScale)
	if scaled >= float64(math.MaxInt64) {
		return timeFP(math.MaxInt64)
	}
	return timeFP(scaled)
}

type node struct {
	id    model.RecordID
	t     timeFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aT, aID) is ordered before (bT, bID).
func less(aT timeFP, aID model.RecordID, bT timeFP, bID model.RecordID) bool {
	if aT != bT {
		return aT < bT
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priorityFor scrambles the record id (splitmix64) so priorities are
// spread evenly but reproducible across runs.
func priorityFor(id model.RecordID) uint64 {
	z := uint64(id) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func insert(n *node, id model.RecordID, t timeFP) *node {
	if n == nil {
		return &node{id: id, t: t, prio: priorityFor(id), size: 1}
	}
	if less(t, id, n.t, n.id) {
		n.left = insert(n.left, id, t)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, t)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id model.RecordID, t timeFP) *node {
	if n == nil {
		return nil
	}
	if t == n.t && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, t)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, t)
		}
	} else if less(t, id, n.t, n.id) {
		n.left = deleteNode(n.left, id, t)
	} else {
		n.right = deleteNode(n.right, id, t)
	}
	fix(n)
	return n
}

// collect walks n in order and appends every record accepted by keep.
func collect(n *node, byID map[model.RecordID]model.TimeRecord, keep func(model.TimeRecord) bool, out *[]model.TimeRecord) {
	if n == nil {
		return
	}
	collect(n.left, byID, keep, out)
	if rec, ok := byID[n.id]; ok && keep(rec) {
		*out = append(*out, rec)
	}
	collect(n.right, byID, keep, out)
}

type teamSeasonKey struct {
	team   model.TeamID
	season int
}

// TreapStore is the in-memory Store.
type TreapStore struct {
	mu          sync.RWMutex
	trees       map[model.Event]*node
	byID        map[model.RecordID]model.TimeRecord
	teamSeasons map[teamSeasonKey]*teamSeasonCount
	nextID      model.RecordID

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	closeOnce             sync.Once
}

type teamSeasonCount struct {
	ts    model.TeamSeason
	count int
}

// NewTreapStore constructs an empty store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		trees:                 make(map[model.Event]*node),
		byID:                  make(map[model.RecordID]model.TimeRecord),
		teamSeasons:           make(map[teamSeasonKey]*teamSeasonCount),
		nextID:                1,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Insert implements Store.Insert in O(log n) expected time.
func (s *TreapStore) Insert(ctx context.Context, rec model.TimeRecord) (model.TimeRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreInsertLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return model.TimeRecord{}, err
	}
	if math.IsNaN(rec.Seconds) || math.IsInf(rec.Seconds, 0) || rec.Seconds < 0 {
		metrics.RecordErrorByComponent("store", "invalid_record")
		return model.TimeRecord{}, fmt.Errorf("%w: elapsed time %v", ErrInvalidRecord, rec.Seconds)
	}
	if rec.Event == "" {
		metrics.RecordErrorByComponent("store", "invalid_record")
		return model.TimeRecord{}, fmt.Errorf("%w: missing event", ErrInvalidRecord)
	}

	s.mu.Lock()
	if rec.ID == 0 {
		rec.ID = s.nextID
	}
	if _, taken := s.byID[rec.ID]; taken {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("store", "duplicate_id")
		return model.TimeRecord{}, fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
	}
	if rec.ID >= s.nextID {
		s.nextID = rec.ID + 1
	}
	s.byID[rec.ID] = rec
	s.trees[rec.Event] = insert(s.trees[rec.Event], rec.ID, toFixedPoint(rec.Seconds))

	key := teamSeasonKey{team: rec.TeamID, season: rec.Season}
	tc, ok := s.teamSeasons[key]
	if !ok {
		tc = &teamSeasonCount{ts: model.TeamSeason{TeamID: rec.TeamID, TeamName: rec.TeamName, Season: rec.Season}}
		s.teamSeasons[key] = tc
	}
	tc.count++
	s.mu.Unlock()

	return rec, nil
}

// Get implements Store.Get.
func (s *TreapStore) Get(ctx context.Context, id model.RecordID) (model.TimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.TimeRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return model.TimeRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, nil
}

// Delete implements Store.Delete.
func (s *TreapStore) Delete(ctx context.Context, id model.RecordID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("store", "not_found")
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(s.byID, id)
	root := deleteNode(s.trees[rec.Event], id, toFixedPoint(rec.Seconds))
	if root == nil {
		delete(s.trees, rec.Event)
	} else {
		s.trees[rec.Event] = root
	}

	key := teamSeasonKey{team: rec.TeamID, season: rec.Season}
	if tc := s.teamSeasons[key]; tc != nil {
		tc.count--
		if tc.count == 0 {
			delete(s.teamSeasons, key)
		}
	}
	return nil
}

// Query implements Store.Query. Records of several events are merged into
// one time-ordered list.
func (s *TreapStore) Query(ctx context.Context, q RecordQuery) ([]model.TimeRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keep := func(rec model.TimeRecord) bool {
		if q.Exclude.Has(rec.ID) {
			return false
		}
		if len(q.TeamSeasons) == 0 {
			return true
		}
		for _, ts := range q.TeamSeasons {
			if ts.Matches(rec) {
				return true
			}
		}
		return false
	}

	s.mu.RLock()
	events := q.Events
	if len(events) == 0 {
		events = s.eventsLocked()
	}
	var out []model.TimeRecord
	seen := make(map[model.Event]bool, len(events))
	for _, ev := range events {
		if seen[ev] {
			continue
		}
		seen[ev] = true
		collect(s.trees[ev], s.byID, keep, &out)
	}
	s.mu.RUnlock()

	if len(seen) > 1 {
		slices.SortStableFunc(out, func(a, b model.TimeRecord) int {
			if c := cmp.Compare(toFixedPoint(a.Seconds), toFixedPoint(b.Seconds)); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	if out == nil {
		out = []model.TimeRecord{}
	}
	return out, nil
}

// TeamSeasons implements Store.TeamSeasons.
func (s *TreapStore) TeamSeasons(ctx context.Context) ([]model.TeamSeason, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.TeamSeason, 0, len(s.teamSeasons))
	for _, tc := range s.teamSeasons {
		out = append(out, tc.ts)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, model.CompareTeamSeasons)
	return out, nil
}

// Events implements Store.Events.
func (s *TreapStore) Events(ctx context.Context) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsLocked(), nil
}

func (s *TreapStore) eventsLocked() []model.Event {
	out := make([]model.Event, 0, len(s.trees))
	for ev := range s.trees {
		out = append(out, ev)
	}
	slices.Sort(out)
	return out
}

// Count returns the total number of records.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// startMetricsUpdater publishes the record count periodically.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoreRecords(s.Count(ctx))
			}
		}
	}()
}
