package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtview/internal/adapters/cache"
	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func sample() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "rank", Kind: table.KindInt},
			{Name: "competitor_name", Kind: table.KindString},
		},
		Rows: [][]any{
			{int64(1), "Jannik Sinner"},
			{int64(2), "Alexander Zverev"},
		},
	}
}

// countingExecutor counts executions and optionally blocks or fails.
type countingExecutor struct {
	calls   atomic.Int64
	release chan struct{}
	fail    atomic.Bool
}

func (e *countingExecutor) Execute(_ context.Context, q datasource.Query) (table.Table, error) {
	e.calls.Add(1)
	if e.release != nil {
		<-e.release
	}
	if e.fail.Load() {
		return table.Empty(), &datasource.Error{Op: "execute", Query: q.Name, Kind: datasource.ErrConnect, Err: errors.New("refused")}
	}
	return sample(), nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (table.Table, bool, error) {
	return table.Table{}, false, cache.ErrStore
}
func (brokenStore) Set(context.Context, string, table.Table) error { return cache.ErrStore }
func (brokenStore) Delete(context.Context, string) error           { return cache.ErrStore }
func (brokenStore) Purge(context.Context) error                    { return cache.ErrStore }
func (brokenStore) Len(context.Context) (int, error)               { return 0, cache.ErrStore }

func TestLoaderLoad(t *testing.T) {
	Convey("Given a loader over a counting executor", t, func() {
		ctx := context.Background()
		exec := &countingExecutor{}
		loader := cache.NewLoader(exec, cache.NewMemoryStore(0, 0))

		Convey("When the same query is loaded twice", func() {
			first, err1 := loader.Load(ctx, datasource.RankingsQuery)
			second, err2 := loader.Load(ctx, datasource.RankingsQuery)

			Convey("Then the executor should run once and both results match", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(exec.calls.Load(), ShouldEqual, 1)
				So(second, ShouldResemble, first)

				st := loader.Stats(ctx)
				So(st.Hits, ShouldEqual, 1)
				So(st.Misses, ShouldEqual, 1)
				So(st.Executions, ShouldEqual, 1)
				So(st.Entries, ShouldEqual, 1)
			})
		})

		Convey("When different queries are loaded", func() {
			_, _ = loader.Load(ctx, datasource.RankingsQuery)
			_, _ = loader.Load(ctx, datasource.VenuesQuery)

			Convey("Then each key should execute independently", func() {
				So(exec.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the execution fails", func() {
			exec.fail.Store(true)
			tbl, err := loader.Load(ctx, datasource.RankingsQuery)

			Convey("Then an empty table and the data source error are returned", func() {
				So(errors.Is(err, datasource.ErrDataSource), ShouldBeTrue)
				So(tbl.IsEmpty(), ShouldBeTrue)
			})

			Convey("And the failure should not be cached", func() {
				exec.fail.Store(false)
				tbl, err := loader.Load(ctx, datasource.RankingsQuery)
				So(err, ShouldBeNil)
				So(tbl.Len(), ShouldEqual, 2)
				So(exec.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When an entry is invalidated", func() {
			_, _ = loader.Load(ctx, datasource.RankingsQuery)
			So(loader.Invalidate(ctx, datasource.RankingsQuery), ShouldBeNil)
			_, _ = loader.Load(ctx, datasource.RankingsQuery)

			Convey("Then the next load should execute again", func() {
				So(exec.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When a refresh fails while the data source is down", func() {
			before, err := loader.Load(ctx, datasource.RankingsQuery)
			So(err, ShouldBeNil)
			exec.fail.Store(true)
			refreshErr := loader.Refresh(ctx, datasource.RankingsQuery)
			after, err := loader.Load(ctx, datasource.RankingsQuery)

			Convey("Then the last good table should still be served", func() {
				So(errors.Is(refreshErr, datasource.ErrDataSource), ShouldBeTrue)
				So(err, ShouldBeNil)
				So(after, ShouldResemble, before)
				So(after.Len(), ShouldEqual, 2)
				So(exec.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the cache is refreshed", func() {
			_, _ = loader.Load(ctx, datasource.RankingsQuery)
			err := loader.Refresh(ctx, datasource.Queries()...)

			Convey("Then every query should be reloaded", func() {
				So(err, ShouldBeNil)
				So(exec.calls.Load(), ShouldEqual, 3)
				So(loader.Stats(ctx).Entries, ShouldEqual, 2)
			})
		})
	})
}

func TestLoaderConcurrent(t *testing.T) {
	Convey("Given many callers missing the same key at once", t, func() {
		ctx := context.Background()
		exec := &countingExecutor{release: make(chan struct{})}
		loader := cache.NewLoader(exec, cache.NewMemoryStore(0, 0))

		const callers = 16
		var wg sync.WaitGroup
		results := make([]table.Table, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = loader.Load(ctx, datasource.RankingsQuery)
			}(i)
		}

		time.Sleep(50 * time.Millisecond)
		close(exec.release)
		wg.Wait()

		Convey("Then only one execution should happen and all callers share it", func() {
			So(exec.calls.Load(), ShouldEqual, 1)
			for i := 0; i < callers; i++ {
				So(errs[i], ShouldBeNil)
				So(results[i].Len(), ShouldEqual, 2)
			}
		})
	})
}

func TestLoaderStoreFailure(t *testing.T) {
	Convey("Given a loader whose store is unavailable", t, func() {
		ctx := context.Background()
		exec := &countingExecutor{}
		loader := cache.NewLoader(exec, brokenStore{})

		Convey("When loading", func() {
			tbl, err := loader.Load(ctx, datasource.VenuesQuery)

			Convey("Then it should fall back to direct execution", func() {
				So(err, ShouldBeNil)
				So(tbl.Len(), ShouldEqual, 2)
				st := loader.Stats(ctx)
				So(st.StoreErrors, ShouldBeGreaterThan, 0)
				So(st.Entries, ShouldEqual, -1)
			})
		})

		Convey("When purging", func() {
			err := loader.Purge(ctx)
			So(errors.Is(err, cache.ErrStore), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a bounded memory store", t, func() {
		ctx := context.Background()
		s := cache.NewMemoryStore(1, 0)

		Convey("When a second key is added", func() {
			So(s.Set(ctx, "a", sample()), ShouldBeNil)
			So(s.Set(ctx, "b", sample()), ShouldBeNil)

			Convey("Then the oldest entry should be evicted", func() {
				_, ok, _ := s.Get(ctx, "a")
				So(ok, ShouldBeFalse)
				_, ok, _ = s.Get(ctx, "b")
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given a memory store with a short ttl", t, func() {
		ctx := context.Background()
		s := cache.NewMemoryStore(0, 20*time.Millisecond)
		So(s.Set(ctx, "a", sample()), ShouldBeNil)

		Convey("Then entries should expire", func() {
			time.Sleep(60 * time.Millisecond)
			_, ok, _ := s.Get(ctx, "a")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store backed by miniredis", t, func() {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		s := cache.NewRedisStore(client, cache.WithTTL(time.Minute))
		defer s.Close()
		ctx := context.Background()

		Convey("When a table is stored and read back", func() {
			So(s.Set(ctx, datasource.RankingsQuery.Text, sample()), ShouldBeNil)
			got, ok, err := s.Get(ctx, datasource.RankingsQuery.Text)

			Convey("Then cell types should survive the round trip", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, sample())
				n, err := s.Len(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the ttl elapses", func() {
			So(s.Set(ctx, "q", sample()), ShouldBeNil)
			mr.FastForward(2 * time.Minute)

			Convey("Then the entry should be gone", func() {
				_, ok, err := s.Get(ctx, "q")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When purging", func() {
			So(s.Set(ctx, "q1", sample()), ShouldBeNil)
			So(s.Set(ctx, "q2", sample()), ShouldBeNil)
			So(mr.Set("unrelated", "1"), ShouldBeNil)
			So(s.Purge(ctx), ShouldBeNil)

			Convey("Then only prefixed keys should be removed", func() {
				n, _ := s.Len(ctx)
				So(n, ShouldEqual, 0)
				So(mr.Exists("unrelated"), ShouldBeTrue)
			})
		})

		Convey("When an entry holds garbage", func() {
			So(s.Set(ctx, "q", sample()), ShouldBeNil)
			for _, k := range mr.Keys() {
				So(mr.Set(k, "not json"), ShouldBeNil)
			}
			_, ok, err := s.Get(ctx, "q")

			Convey("Then it should report corruption as a miss", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, cache.ErrCorrupt), ShouldBeTrue)
			})
		})

		Convey("When the server goes away", func() {
			mr.Close()
			_, _, err := s.Get(ctx, "q")
			So(errors.Is(err, cache.ErrStore), ShouldBeTrue)
		})
	})
}
