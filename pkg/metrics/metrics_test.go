package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithRegistry(registry),
				WithHistogramBuckets([]float64{1, 10, 100, 1000}),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with a nil registry option", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(nil), WithRegistry(registry))

			Convey("Then the nil is ignored", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry), WithHistogramBuckets(nil))

			Convey("Then the defaults are kept", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the pipeline registry", t, func() {
		Convey("When gathering registered metrics", func() {
			families, err := Registry().Gather()

			Convey("Then the pipeline metrics are present", func() {
				So(err, ShouldBeNil)

				names := make(map[string]struct{}, len(families))
				for _, f := range families {
					names[f.GetName()] = struct{}{}
				}
				So(names, ShouldContainKey, "seiseki_import_scores_imported_total")
				So(names, ShouldContainKey, "seiseki_import_batch_duration_milliseconds")
				So(names, ShouldContainKey, "seiseki_import_insert_queue_size")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recording helpers", t, func() {
		Convey("When recording pipeline metrics", func() {
			Convey("Then it should record imported and failed scores", func() {
				So(func() {
					RecordScoreImported()
					RecordScoreFailed("NotFound")
					RecordScoreFailed("InvalidScore")
					RecordFatalImport()
				}, ShouldNotPanic)
			})

			Convey("And it should record durations", func() {
				So(func() {
					RecordImportDuration(125.0)
					RecordConvertDuration(0.4)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update queue size and flushes", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateQueueSize(499)
					RecordQueueFlush(500)
					RecordQueueFlush(0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording personal best and stats metrics", func() {
			Convey("Then it should record updates and deltas", func() {
				So(func() {
					RecordPBUpdate()
					RecordClassDelta()
					RecordStatsUpsert()
					RecordRatingDiagnostic()
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recording", t, func() {
		Convey("When many goroutines record at once", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordScoreImported()
						UpdateQueueSize(j)
						RecordConvertDuration(float64(j))
						RecordScoreFailed("NotFound")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}
