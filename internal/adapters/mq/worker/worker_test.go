package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/troxeldj/greek-god-arena/internal/adapters/mq/queue"
	"github.com/troxeldj/greek-god-arena/internal/adapters/mq/worker"
	"github.com/troxeldj/greek-god-arena/internal/adapters/repository"
	"github.com/troxeldj/greek-god-arena/internal/domain/model"
	logging "github.com/troxeldj/greek-god-arena/pkg/logger"
)

type mockQueue struct {
	ch chan model.MatchResult
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.MatchResult, 200)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.MatchResult {
	return mq.ch
}

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

type mockRecorder struct {
	mu       sync.Mutex
	recorded map[string]model.MatchResult
	errors   map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		recorded: make(map[string]model.MatchResult),
		errors:   make(map[string]error),
	}
}

func (m *mockRecorder) Record(ctx context.Context, r model.MatchResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[r.MatchID]; ok {
		return false, err
	}
	if _, ok := m.recorded[r.MatchID]; ok {
		return false, nil
	}
	m.recorded[r.MatchID] = r
	return true, nil
}

func (m *mockRecorder) setError(matchID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[matchID] = err
}

func (m *mockRecorder) has(matchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.recorded[matchID]
	return ok
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recorded)
}

func result(id string) model.MatchResult {
	return model.MatchResult{
		MatchID:     id,
		SessionID:   "s1",
		WinnerID:    "zeus",
		LoserID:     "hades",
		WinnerScore: 3,
		LoserScore:  2,
		Rounds:      6,
		FinishedAt:  time.Now(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		rec := newMockRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a result is queued", func() {
			q.ch <- result("m1")

			convey.Convey("Then it is recorded", func() {
				convey.So(waitFor(func() bool { return rec.has("m1") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the recorder fails", func() {
			rec.setError("m2", errors.New("store down"))
			q.ch <- result("m2")
			q.ch <- result("m3")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return rec.has("m3") }), convey.ShouldBeTrue)
				convey.So(rec.has("m2"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops gracefully and a second call is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose queue closes", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, newMockRecorder())
		go w.Run(context.Background())
		_ = q.Close()

		convey.Convey("Then Run returns", func() {
			select {
			case <-w.Done():
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over the in-memory queue and standings store", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(4, q, store)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many results are enqueued concurrently", func() {
			const producers = 5
			const perProducer = 10
			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						_ = q.Enqueue(ctx, result(fmt.Sprintf("m-%d-%d", p, i)))
					}
				}(p)
			}
			wg.Wait()

			err := pool.Shutdown(context.Background())

			convey.Convey("Then shutdown drains every result into the standings", func() {
				convey.So(err, convey.ShouldBeNil)
				entry, err := store.Rank(context.Background(), "zeus")
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.Wins, convey.ShouldEqual, producers*perProducer)
				convey.So(entry.Rank, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockRecorder())

		convey.Convey("Then the default size is used", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 2)
		})
	})

	convey.Convey("Given a started pool whose caller context is cancelled", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(20))
		rec := newMockRecorder()
		pool := worker.NewPool(2, q, rec)
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(context.WithoutCancel(ctx))
		cancel()

		for i := 0; i < 10; i++ {
			convey.So(q.Enqueue(context.Background(), result(fmt.Sprintf("late-%d", i))), convey.ShouldBeNil)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		err := pool.Shutdown(shutdownCtx)

		convey.Convey("Then shutdown still records every queued result", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(rec.count(), convey.ShouldEqual, 10)
			convey.So(q.Len(context.Background()), convey.ShouldEqual, 0)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
