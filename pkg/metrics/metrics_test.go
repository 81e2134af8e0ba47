package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register its collectors", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "arena")
				So(manager.subsystem, ShouldEqual, "game")
				manager.matchesStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "arena")
				So(manager.subsystem, ShouldEqual, "game")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording round results", func() {
			before := testutil.ToFloat64(globalManager.roundsPlayed.WithLabelValues("tie"))
			RecordRound("tie")
			RecordRound("tie")

			Convey("Then the labelled counter should advance", func() {
				So(testutil.ToFloat64(globalManager.roundsPlayed.WithLabelValues("tie")), ShouldEqual, before+2)
			})
		})

		Convey("When recording a won match", func() {
			before := testutil.ToFloat64(globalManager.matchesWon.WithLabelValues("zeus"))
			RecordMatchWon("zeus")

			Convey("Then the contestant counter should advance", func() {
				So(testutil.ToFloat64(globalManager.matchesWon.WithLabelValues("zeus")), ShouldEqual, before+1)
			})
		})

		Convey("When setting gauges", func() {
			UpdateActiveSessions(7)
			UpdateQueueSize(3)
			UpdateQueueCapacity(16)
			UpdateWorkerCount(2)
			UpdateStandingsContestants(4)

			Convey("Then the gauges should hold the values", func() {
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.standingsContestants), ShouldEqual, 4)
			})
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordMatchStarted()
				RecordMatchAbandoned()
				RecordSelectionRejected("full")
				RecordActionDuplicate()
				RecordSessionsEvicted(2)
				RecordCelebrationCancelled()
				RecordStandingsUpdateLatency(0.5)
				RecordQueueEnqueue()
				RecordQueueDropped("queue_full")
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordHTTPRequest("roster", "GET", "200")
				RecordHTTPRequestDuration("roster", "GET", "200", 1.5)
				RecordErrorByEndpoint("roster", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then the registry should be exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
