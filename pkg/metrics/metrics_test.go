package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the metrics are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.matchupsProcessed.Inc()
				count, err := testutil.GatherAndCount(registry, "multielo_ratings_matchups_processed_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("elo"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names use the namespace and subsystem", func() {
				manager.ratingUpdates.Add(3)
				So(testutil.ToFloat64(manager.ratingUpdates), ShouldEqual, 3.0)
				count, err := testutil.GatherAndCount(registry, "test_elo_rating_updates_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording tracker metrics", func() {
			before := testutil.ToFloat64(globalManager.participantsCreated)
			RecordParticipantCreated()
			RecordParticipantCreated()

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.participantsCreated), ShouldEqual, before+2)
			})
		})

		Convey("When recording every kind of metric", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordRatingComputation(0.2)
					RecordEngineError("contract")
					RecordSimulation()
					RecordMatchupProcessed()
					RecordMatchupSkipped()
					RecordMatchupDuplicate()
					RecordRatingUpdate()
					UpdateParticipantsTotal(4)
					RecordStateSave(1.5)
					RecordStateLoad(0.7)
					RecordStateError("save")
					RecordHTTPRequest("leaderboard", "GET", "200")
					RecordHTTPRequestDuration("leaderboard", "GET", "200", 3)
					RecordErrorByEndpoint("matchups", "POST", "client_error")
					RecordErrorByType("client_error", "medium")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(8)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(testutil.ToFloat64(globalManager.participantsTotal), ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}
