package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/lanes/internal/adapters/mq/queue"
	worker "github.com/okian/lanes/internal/adapters/mq/worker"
	model "github.com/okian/lanes/internal/domain/model"
	logging "github.com/okian/lanes/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockStore struct {
	mu      sync.Mutex
	records []model.TimeRecord
	fail    map[model.AthleteID]error
}

func newMockStore() *mockStore {
	return &mockStore{fail: make(map[model.AthleteID]error)}
}

func (s *mockStore) Insert(_ context.Context, rec model.TimeRecord) (model.TimeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[rec.AthleteID]; err != nil {
		return model.TimeRecord{}, err
	}
	rec.ID = model.RecordID(len(s.records) + 1)
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *mockStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type mockReleaser struct {
	mu   sync.Mutex
	keys []string
}

func (r *mockReleaser) Unrecord(_ context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func (r *mockReleaser) released() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func item(athlete int) queue.Item {
	return queue.Item{
		Key:    fmt.Sprintf("athlete-%d", athlete),
		Record: model.TimeRecord{AthleteID: model.AthleteID(athlete), Event: "100 Fly", Seconds: 50 + float64(athlete)},
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWorker(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a worker reading from a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		store := newMockStore()
		rel := &mockReleaser{}
		w := worker.NewInMemoryWorker(q, store, worker.WithName("test"), worker.WithReleaser(rel))
		go w.Run(ctx)

		convey.Convey("When records are queued", func() {
			for i := 1; i <= 3; i++ {
				convey.So(q.Enqueue(ctx, item(i)), convey.ShouldBeNil)
			}

			convey.Convey("Then they are stored", func() {
				convey.So(eventually(func() bool { return store.count() == 3 }), convey.ShouldBeTrue)
				convey.So(rel.released(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the store refuses a record", func() {
			store.fail[2] = errors.New("duplicate id")
			convey.So(q.Enqueue(ctx, item(1)), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, item(2)), convey.ShouldBeNil)

			convey.Convey("Then its key is released and the rest still stored", func() {
				convey.So(eventually(func() bool { return len(rel.released()) == 1 }), convey.ShouldBeTrue)
				convey.So(rel.released()[0], convey.ShouldEqual, "athlete-2")
				convey.So(eventually(func() bool { return store.count() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		store := newMockStore()
		store.fail[7] = errors.New("boom")
		rel := &mockReleaser{}
		pool := worker.NewPool(4, q, store, worker.WithReleaser(rel))
		convey.So(pool.Size(), convey.ShouldEqual, 4)
		pool.Start(ctx)

		for i := 1; i <= 200; i++ {
			convey.So(q.Enqueue(ctx, item(i)), convey.ShouldBeNil)
		}

		convey.Convey("When it shuts down", func() {
			err := pool.Shutdown(ctx)

			convey.Convey("Then every queued record was handled first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.count(), convey.ShouldEqual, 199)
				convey.So(pool.Stored(), convey.ShouldEqual, 199)
				convey.So(pool.Failed(), convey.ShouldEqual, 1)
				convey.So(rel.released(), convey.ShouldResemble, []string{"athlete-7"})
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("A pool without a worker count uses one per CPU", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockStore())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
