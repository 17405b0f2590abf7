package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/courtview/internal/adapters/cache"
	"github.com/okian/courtview/internal/adapters/datasource"
	service "github.com/okian/courtview/internal/app"
	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/types"
	"github.com/okian/courtview/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

func newService(exec *stubExecutor, opts ...service.Option) *service.Service {
	return service.New(cache.NewLoader(exec, cache.NewMemoryStore(0, 0)), opts...)
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service with warmup", t, func() {
		exec := newStubExecutor()
		svc := newService(exec)
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then both queries should be loaded once", func() {
				So(err, ShouldBeNil)
				So(exec.count("rankings"), ShouldEqual, 1)
				So(exec.count("venues"), ShouldEqual, 1)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(exec.count("rankings"), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service whose data source is down", t, func() {
		exec := newStubExecutor()
		exec.setFail("rankings", true)
		svc := newService(exec)
		defer svc.Stop()

		Convey("Then starting should still succeed", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given refresh schedules in crontab, seconds and descriptor form", t, func() {
		specs := []string{"*/5 * * * *", "0 */5 * * * *", "@every 1h"}

		Convey("Then the service should start with each of them", func() {
			for _, spec := range specs {
				svc := newService(newStubExecutor(), service.WithWarmup(false), service.WithRefreshSchedule(spec))
				So(svc.Start(context.Background()), ShouldBeNil)
				svc.Stop()
			}
		})
	})

	Convey("Given an invalid refresh schedule", t, func() {
		svc := newService(newStubExecutor(), service.WithRefreshSchedule("every now and then"))

		Convey("Then starting should fail", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_Refresh(t *testing.T) {
	Convey("Given a service refreshing every second", t, func() {
		exec := newStubExecutor()
		svc := newService(exec, service.WithRefreshSchedule("* * * * * *"))
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When the schedule fires", func() {
			time.Sleep(2200 * time.Millisecond)
			svc.Stop()

			Convey("Then the cache should have been reloaded", func() {
				So(exec.count("rankings"), ShouldBeGreaterThan, 1)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(newStubExecutor())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats(context.Background())
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And stopping again should be safe", func() {
				svc.Stop()
			})
		})
	})
}

func TestService_Dashboard(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		exec := newStubExecutor()
		svc := newService(exec, service.WithYears(2024, 2023), service.WithHistogramBins(5))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When requesting the default dashboard", func() {
			d, err := svc.Dashboard(ctx, service.DashboardQuery{})

			Convey("Then it should use the default range and period", func() {
				So(err, ShouldBeNil)
				So(d.Range, ShouldResemble, rankings.Range{Low: 1, High: 24})
				So(d.Period, ShouldResemble, types.Period{Year: 2024, Week: 1})
				So(d.Rankings.Data, ShouldHaveLength, 3)
				So(d.Venues.Data, ShouldHaveLength, 1)
				So(d.Search.Performed, ShouldBeFalse)
			})

			Convey("And repeated requests should not reach the data source", func() {
				_, _ = svc.Dashboard(ctx, service.DashboardQuery{})
				So(exec.count("rankings"), ShouldEqual, 1)
				So(exec.count("venues"), ShouldEqual, 1)
			})
		})

		Convey("When requesting a period and a search", func() {
			d, err := svc.Dashboard(ctx, service.DashboardQuery{
				Year:  2023,
				Week:  12,
				Range: &rankings.Range{Low: 1, High: 100},
				Name:  "ang",
			})

			Convey("Then the search should match within the range", func() {
				So(err, ShouldBeNil)
				So(d.Period, ShouldResemble, types.Period{Year: 2023, Week: 12})
				So(d.Search.Rows, ShouldHaveLength, 2)
				So(d.Search.Rows[0].CompetitorName, ShouldEqual, "Wang Yafan")
				So(d.Search.Rows[1].CompetitorName, ShouldEqual, "Zhang Shuai")
			})
		})

		Convey("When the period is not selectable", func() {
			_, err := svc.Dashboard(ctx, service.DashboardQuery{Year: 1999})
			So(errors.Is(err, service.ErrInvalidPeriod), ShouldBeTrue)
		})

		Convey("When the range is invalid", func() {
			_, err := svc.Dashboard(ctx, service.DashboardQuery{Range: &rankings.Range{Low: 0, High: 10}})
			So(errors.Is(err, rankings.ErrInvalidRange), ShouldBeTrue)
		})
	})
}

func TestService_Sections(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		exec := newStubExecutor()
		svc := newService(exec)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing rankings in 1..2", func() {
			sec, err := svc.Rankings(ctx, &rankings.Range{Low: 1, High: 2})
			So(err, ShouldBeNil)
			So(sec.Data, ShouldHaveLength, 2)
			So(sec.Data[0].CompetitorName, ShouldEqual, "Taylor Fritz")
		})

		Convey("When summarizing countries", func() {
			sec, err := svc.Countries(ctx, nil)
			So(err, ShouldBeNil)
			So(sec.Data, ShouldResemble, []rankings.CountrySummary{
				{Country: "USA", Competitors: 2, AvgPoints: 950},
				{Country: "ESP", Competitors: 1, AvgPoints: 850},
			})
		})

		Convey("When building charts", func() {
			c, err := svc.Charts(ctx, &rankings.Range{Low: 1, High: 100})
			So(err, ShouldBeNil)
			So(c.Scatter.Data, ShouldHaveLength, 3)
			So(c.Countries.Data.MaxAvgPoints, ShouldEqual, 950)
		})

		Convey("When searching with an empty name", func() {
			res, err := svc.Search(ctx, "", nil)
			So(err, ShouldBeNil)
			So(res.Performed, ShouldBeFalse)
		})

		Convey("When searching for an unknown competitor", func() {
			res, err := svc.Search(ctx, "xyz", nil)
			So(err, ShouldBeNil)
			So(res.Performed, ShouldBeTrue)
			So(res.Warning, ShouldEqual, types.WarnNoCompetitor)
		})

		Convey("When listing venues", func() {
			sec := svc.Venues(ctx)
			So(sec.Data, ShouldHaveLength, 1)
			So(sec.Data[0].ComplexName, ShouldEqual, "All England Club")
		})

		Convey("When reading the filters", func() {
			f := svc.Filters()
			So(f.Years, ShouldResemble, []int{2024})
			So(f.Weeks, ShouldHaveLength, 52)
			So(f.Weeks[51], ShouldEqual, 52)
			So(f.MinRank, ShouldEqual, 1)
			So(f.MaxRank, ShouldEqual, 100)
			So(f.DefaultRange, ShouldResemble, rankings.Range{Low: 1, High: 24})
		})
	})
}

func TestService_DataSourceFailure(t *testing.T) {
	Convey("Given a service whose venues query fails", t, func() {
		ctx := context.Background()
		exec := newStubExecutor()
		exec.setFail("venues", true)
		svc := newService(exec, service.WithPinger(okPinger{err: errors.New("down")}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing venues", func() {
			sec := svc.Venues(ctx)

			Convey("Then the section should warn and carry the failure", func() {
				So(sec.Data, ShouldBeEmpty)
				So(sec.Warning, ShouldEqual, types.WarnNoVenues)
				So(sec.Error, ShouldContainSubstring, "connection refused")
			})
		})

		Convey("When the data source recovers", func() {
			exec.setFail("venues", false)
			sec := svc.Venues(ctx)

			Convey("Then the failure should not have been cached", func() {
				So(sec.Data, ShouldHaveLength, 1)
				So(sec.Warning, ShouldBeEmpty)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats(ctx)
			So(stats["dataSource"], ShouldEqual, "down")
		})
	})
}

func TestService_RankingsEndpointsSkipVenues(t *testing.T) {
	Convey("Given a service whose venues query fails", t, func() {
		ctx := context.Background()
		exec := newStubExecutor()
		exec.setFail("venues", true)
		rec := newRecordingLogger()
		svc := newService(exec, service.WithWarmup(false), service.WithLogger(rec))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When rankings, countries, charts and search are requested repeatedly", func() {
			for i := 0; i < 5; i++ {
				sec, err := svc.Rankings(ctx, nil)
				So(err, ShouldBeNil)
				So(sec.Error, ShouldBeEmpty)
				_, err = svc.Countries(ctx, nil)
				So(err, ShouldBeNil)
				_, err = svc.Charts(ctx, nil)
				So(err, ShouldBeNil)
				res, err := svc.Search(ctx, "ang", nil)
				So(err, ShouldBeNil)
				So(res.Performed, ShouldBeTrue)
			}

			Convey("Then the venues query should never run", func() {
				So(exec.count("venues"), ShouldEqual, 0)
				So(exec.count("rankings"), ShouldEqual, 1)
			})

			Convey("And dropped rows should be reported once for the cached table", func() {
				So(rec.warned("dropped ranking rows without a valid rank"), ShouldEqual, 1)
			})
		})

		Convey("When the full dashboard is requested", func() {
			d, err := svc.Dashboard(ctx, service.DashboardQuery{})

			Convey("Then venues should be loaded and their failure shown", func() {
				So(err, ShouldBeNil)
				So(exec.count("venues"), ShouldEqual, 1)
				So(d.Venues.Warning, ShouldEqual, types.WarnNoVenues)
				So(d.Venues.Error, ShouldContainSubstring, "connection refused")
				So(d.Rankings.Data, ShouldNotBeEmpty)
			})
		})
	})
}

func TestService_Invalidate(t *testing.T) {
	Convey("Given a warmed service", t, func() {
		ctx := context.Background()
		exec := newStubExecutor()
		svc := newService(exec)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When invalidating one query", func() {
			So(svc.Invalidate(ctx, "rankings"), ShouldBeNil)
			_, _ = svc.Rankings(ctx, nil)

			Convey("Then only that query should run again", func() {
				So(exec.count("rankings"), ShouldEqual, 2)
				So(exec.count("venues"), ShouldEqual, 1)
			})
		})

		Convey("When purging everything", func() {
			So(svc.Invalidate(ctx, ""), ShouldBeNil)
			_, _ = svc.Dashboard(ctx, service.DashboardQuery{})

			Convey("Then both queries should run again", func() {
				So(exec.count("rankings"), ShouldEqual, 2)
				So(exec.count("venues"), ShouldEqual, 2)
			})
		})

		Convey("When naming an unknown query", func() {
			err := svc.Invalidate(ctx, "players")
			So(errors.Is(err, service.ErrUnknownQuery), ShouldBeTrue)
		})

		Convey("When reading stats", func() {
			st, ok := svc.GetStats(ctx)["cache"].(cache.Stats)
			So(ok, ShouldBeTrue)
			So(st.Executions, ShouldEqual, 2)
			So(st.Entries, ShouldEqual, 2)
		})
	})

	Convey("Given the fixed queries", t, func() {
		So(datasource.Queries(), ShouldHaveLength, 2)
	})
}
