package queue_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/importer/queue"
	"github.com/okian/seiseki/internal/repository"
)

func score(i int) *model.Score {
	return &model.Score{
		ScoreID: fmt.Sprintf("score-%d", i),
		UserID:  1,
		ChartID: "chart-1",
	}
}

func TestScoreQueue(t *testing.T) {
	Convey("Given a score queue with a threshold of 3", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		q := queue.New(store, queue.WithThreshold(3))

		Convey("When appending below the threshold", func() {
			n, flushed, err := q.Append(ctx, score(1))
			So(err, ShouldBeNil)
			So(flushed, ShouldBeFalse)
			So(n, ShouldEqual, 0)

			Convey("Then nothing reaches the store", func() {
				count, err := store.CountChartScores(ctx, "chart-1")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 0)
				So(q.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the threshold is reached", func() {
			for i := 1; i <= 2; i++ {
				_, _, err := q.Append(ctx, score(i))
				So(err, ShouldBeNil)
			}
			n, flushed, err := q.Append(ctx, score(3))

			Convey("Then the buffer auto-flushes and reports the count", func() {
				So(err, ShouldBeNil)
				So(flushed, ShouldBeTrue)
				So(n, ShouldEqual, 3)
				So(q.Len(), ShouldEqual, 0)

				count, err := store.CountChartScores(ctx, "chart-1")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 3)
			})
		})

		Convey("When flushing a partial buffer", func() {
			_, _, err := q.Append(ctx, score(1))
			So(err, ShouldBeNil)

			n, err := q.Flush(ctx)

			Convey("Then the single score is written", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)

				count, err := store.CountChartScores(ctx, "chart-1")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When flushing an empty buffer", func() {
			n, err := q.Flush(ctx)

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When flushing twice", func() {
			_, _, err := q.Append(ctx, score(1))
			So(err, ShouldBeNil)

			first, err := q.Flush(ctx)
			So(err, ShouldBeNil)
			So(first, ShouldEqual, 1)

			second, err := q.Flush(ctx)

			Convey("Then the second flush writes nothing", func() {
				So(err, ShouldBeNil)
				So(second, ShouldEqual, 0)

				count, err := store.CountChartScores(ctx, "chart-1")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})
	})
}
