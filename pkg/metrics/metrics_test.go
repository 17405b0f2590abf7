package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "courtview")
				So(manager.subsystem, ShouldEqual, "dashboard")
			})
		})

		Convey("When creating on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.queryExecutions.WithLabelValues("rankings").Inc()

			Convey("Then collectors should be registered there only", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "courtview_dashboard_query_executions_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When a nil registry is passed", func() {
			manager := &Manager{registry: prometheus.DefaultRegisterer}
			WithPrometheusRegistry(nil)(manager)

			Convey("Then the default registerer should be kept", func() {
				So(manager.registry, ShouldEqual, prometheus.DefaultRegisterer)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording data source metrics", func() {
			before := testutil.ToFloat64(globalManager.queryExecutions.WithLabelValues("recording-test"))
			RecordQueryExecution("recording-test", 12.5)
			RecordQueryError("recording-test", "timeout")
			UpdateRowsLoaded("recording-test", 120)
			RecordRowsDropped("rankings", 2)
			RecordRowsDropped("rankings", 0)

			Convey("Then counters and gauges should move", func() {
				So(testutil.ToFloat64(globalManager.queryExecutions.WithLabelValues("recording-test")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.queryErrors.WithLabelValues("recording-test", "timeout")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.rowsLoaded.WithLabelValues("recording-test")), ShouldEqual, 120)
			})
		})

		Convey("When recording cache metrics", func() {
			hits := testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("venues"))
			RecordCacheHit("venues")
			RecordCacheMiss("venues")
			RecordCacheShared("venues")
			RecordCacheStoreError("get")
			RecordCacheInvalidation()
			RecordCacheRefresh("ok")
			UpdateCacheEntries(2)

			Convey("Then they should be observable", func() {
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("venues")), ShouldEqual, hits+1)
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, 2)
			})
		})

		Convey("When recording presentation and HTTP metrics", func() {
			So(func() {
				RecordEmptyResult("rankings")
				RecordSearch("skipped")
				RecordDashboardBuild()
				RecordHTTPRequest("/api/rankings", "GET", "200")
				RecordHTTPRequestDuration("/api/rankings", "GET", "200", 4.0)
				RecordErrorByEndpoint("/api/rankings", "GET", "client_error")
				RecordErrorByType("client_error", "medium")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(100)
				RecordSystemGCPauseTime(1.0)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordCacheInvalidation()
		families, err := GetRegistry().Gather()

		Convey("Then it should expose courtview metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, mf := range families {
				So(strings.HasPrefix(mf.GetName(), "courtview_"), ShouldBeTrue)
			}
		})
	})
}
