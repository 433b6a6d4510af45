package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
)

var (
	stanford24 = model.TeamSeason{TeamID: 1, TeamName: "Stanford", Season: 2024}
	cal24      = model.TeamSeason{TeamID: 2, TeamName: "Cal", Season: 2024}
	cal23      = model.TeamSeason{TeamID: 2, TeamName: "Cal", Season: 2023}
)

func rec(ts model.TeamSeason, athlete int64, ev model.Event, secs float64) model.TimeRecord {
	return model.TimeRecord{
		AthleteID:   model.AthleteID(athlete),
		AthleteName: fmt.Sprintf("athlete %d", athlete),
		TeamID:      ts.TeamID,
		TeamName:    ts.TeamName,
		Season:      ts.Season,
		Event:       ev,
		Seconds:     secs,
	}
}

func newStore(t *testing.T) *TreapStore {
	t.Helper()
	s := NewTreapStore(context.Background())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustInsert(t *testing.T, s *TreapStore, r model.TimeRecord) model.TimeRecord {
	t.Helper()
	out, err := s.Insert(context.Background(), r)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return out
}

func TestTreapStore_InsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if n := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}

	a := mustInsert(t, s, rec(stanford24, 1, "50 Free", 22.5))
	b := mustInsert(t, s, rec(stanford24, 2, "50 Free", 22.1))
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", a.ID, b.ID)
	}

	explicit := rec(cal24, 3, "50 Free", 23.0)
	explicit.ID = 40
	mustInsert(t, s, explicit)
	next := mustInsert(t, s, rec(cal24, 4, "50 Free", 23.5))
	if next.ID != 41 {
		t.Errorf("expected next id 41 after explicit 40, got %d", next.ID)
	}

	dup := rec(cal24, 5, "50 Free", 24.0)
	dup.ID = 40
	if _, err := s.Insert(ctx, dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if n := s.Count(ctx); n != 4 {
		t.Errorf("expected 4 records, got %d", n)
	}
}

func TestTreapStore_WithFirstID(t *testing.T) {
	s := NewTreapStore(context.Background(), WithFirstID(1000), WithMetricsUpdateInterval(time.Minute))
	t.Cleanup(func() { _ = s.Close() })

	a := mustInsert(t, s, rec(stanford24, 1, "50 Free", 22.5))
	if a.ID != 1000 {
		t.Fatalf("expected first id 1000, got %d", a.ID)
	}
	low := rec(stanford24, 2, "50 Free", 22.7)
	low.ID = 5
	mustInsert(t, s, low)
	if next := mustInsert(t, s, rec(stanford24, 3, "50 Free", 23.1)); next.ID != 1001 {
		t.Errorf("explicit lower id must not rewind the counter, got %d", next.ID)
	}
}

func TestTreapStore_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, secs := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := s.Insert(ctx, rec(stanford24, 1, "50 Free", secs)); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("seconds %v: expected ErrInvalidRecord, got %v", secs, err)
		}
	}
	if _, err := s.Insert(ctx, rec(stanford24, 1, "", 22)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("missing event: expected ErrInvalidRecord, got %v", err)
	}
	if s.Count(ctx) != 0 {
		t.Errorf("invalid records must not be stored")
	}
}

func TestTreapStore_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	mustInsert(t, s, rec(stanford24, 1, "100 Free", 45.30)) // id 1
	mustInsert(t, s, rec(stanford24, 2, "100 Free", 44.10)) // id 2
	mustInsert(t, s, rec(cal24, 3, "100 Free", 45.30))      // id 3, ties id 1
	mustInsert(t, s, rec(cal24, 4, "100 Free", 43.90))      // id 4
	mustInsert(t, s, rec(stanford24, 5, "50 Free", 20.00))  // other event

	got, err := s.Query(ctx, RecordQuery{Events: []model.Event{"100 Free"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []model.RecordID{4, 2, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}

	got, _ = s.Query(ctx, RecordQuery{
		Events:      []model.Event{"100 Free"},
		TeamSeasons: []model.TeamSeason{stanford24},
		Exclude:     exclusion.New(2),
	})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected only record 1 after filters, got %+v", got)
	}
}

func TestTreapStore_QueryMergesEvents(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	mustInsert(t, s, rec(stanford24, 1, "100 Back", 50))
	mustInsert(t, s, rec(stanford24, 1, "100 Fly", 48))
	mustInsert(t, s, rec(stanford24, 2, "100 Back", 47))

	got, err := s.Query(ctx, RecordQuery{Events: []model.Event{"100 Back", "100 Fly", "100 Back"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Seconds < got[i-1].Seconds {
			t.Errorf("records out of order at %d: %v after %v", i, got[i].Seconds, got[i-1].Seconds)
		}
	}

	all, _ := s.Query(ctx, RecordQuery{})
	if len(all) != 3 {
		t.Errorf("empty event list should match everything, got %d", len(all))
	}
}

func TestTreapStore_DeleteAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := mustInsert(t, s, rec(cal23, 1, "200 IM", 120.5))
	mustInsert(t, s, rec(cal23, 2, "200 IM", 119.0))

	got, err := s.Get(ctx, a.ID)
	if err != nil || got.AthleteName != "athlete 1" {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	left, _ := s.Query(ctx, RecordQuery{Events: []model.Event{"200 IM"}})
	if len(left) != 1 || left[0].AthleteID != 2 {
		t.Errorf("expected one remaining record, got %+v", left)
	}
}

func TestTreapStore_TeamSeasonsAndEvents(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	mustInsert(t, s, rec(cal23, 1, "50 Free", 22))
	last := mustInsert(t, s, rec(stanford24, 2, "100 Fly", 50))
	mustInsert(t, s, rec(cal24, 3, "50 Free", 21))

	seasons, err := s.TeamSeasons(ctx)
	if err != nil {
		t.Fatalf("team seasons: %v", err)
	}
	want := []string{"2024 Cal", "2024 Stanford", "2023 Cal"}
	if len(seasons) != len(want) {
		t.Fatalf("expected %d team-seasons, got %d", len(want), len(seasons))
	}
	for i, label := range want {
		if seasons[i].Label() != label {
			t.Errorf("position %d: expected %q, got %q", i, label, seasons[i].Label())
		}
	}

	events, _ := s.Events(ctx)
	if len(events) != 2 || events[0] != "100 Fly" || events[1] != "50 Free" {
		t.Errorf("unexpected events %v", events)
	}

	if err := s.Delete(ctx, last.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seasons, _ = s.TeamSeasons(ctx)
	if len(seasons) != 2 {
		t.Errorf("team-season without records should disappear, got %d", len(seasons))
	}
	events, _ = s.Events(ctx)
	if len(events) != 1 {
		t.Errorf("event without records should disappear, got %v", events)
	}
}

func TestTreapStore_RandomOrderMatchesSort(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		secs := 20 + float64(rng.Intn(500))/100
		mustInsert(t, s, rec(stanford24, int64(i), "50 Free", secs))
	}
	got, _ := s.Query(ctx, RecordQuery{Events: []model.Event{"50 Free"}})
	if len(got) != 2000 {
		t.Fatalf("expected 2000 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Seconds < prev.Seconds || (cur.Seconds == prev.Seconds && cur.ID < prev.ID) {
			t.Fatalf("order violated at %d: (%v,%d) after (%v,%d)", i, cur.Seconds, cur.ID, prev.Seconds, prev.ID)
		}
	}
	if size := nsize(s.trees["50 Free"]); size != 2000 {
		t.Errorf("tree size %d does not match record count", size)
	}
}

func TestTreapStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				if _, err := s.Insert(ctx, rec(cal24, int64(g*1000+i), "100 Breast", 55+float64(i)/10)); err != nil {
					t.Errorf("insert: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()
	if n := s.Count(ctx); n != 2000 {
		t.Errorf("expected 2000 records, got %d", n)
	}
}

func TestTreapStore_CanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Insert(ctx, rec(cal24, 1, "50 Free", 22)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := s.Query(ctx, RecordQuery{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTreapStore_CloseIsIdempotent(t *testing.T) {
	s := NewTreapStore(context.Background(), WithMetricsUpdateInterval(10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
