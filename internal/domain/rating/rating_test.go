package rating_test

import (
	"context"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/domain/rating"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestGenericRating(t *testing.T) {
	Convey("Given the generic rating curve", t, func() {
		ctx := context.Background()
		log := logger.Get()
		params := games.Conf(games.IIDX).Rating

		Convey("When scoring exactly at the pivot", func() {
			r := rating.GenericRating(ctx, params.PivotPercent*100, 10, params, log)

			Convey("Then the rating equals the chart level", func() {
				So(r, ShouldAlmostEqual, 10, 0.0001)
			})
		})

		Convey("When scoring below the pivot", func() {
			r := rating.GenericRating(ctx, 50, 10, params, log)

			Convey("Then the rating is below the chart level", func() {
				So(r, ShouldBeGreaterThanOrEqualTo, 0)
				So(r, ShouldBeLessThan, 10)
			})
		})

		Convey("When scoring above the pivot", func() {
			r := rating.GenericRating(ctx, 95, 10, params, log)

			Convey("Then the rating exceeds the chart level", func() {
				So(r, ShouldBeGreaterThan, 10)
			})
		})

		Convey("When the curve blows past the sanity ceiling", func() {
			// An absurd level drives cosh into overflow territory.
			r := rating.GenericRating(ctx, 100, 10_000, params, log)

			Convey("Then the rating degrades to 0", func() {
				So(r, ShouldEqual, 0)
			})
		})

		Convey("When the rating rises monotonically with percent", func() {
			prev := -1.0
			for p := 0.0; p <= 100; p += 5 {
				r := rating.GenericRating(ctx, p, 12, params, log)
				So(r, ShouldBeGreaterThanOrEqualTo, prev)
				prev = r
			}
		})
	})
}

func TestKTRatingTierlistOverride(t *testing.T) {
	Convey("Given a chart with a score tierlist entry", t, func() {
		ctx := context.Background()
		log := logger.Get()
		store := repository.NewMemoryStore()

		chart := &model.Chart{
			ChartID:  "chart-1",
			Game:     games.IIDX,
			LevelNum: 10,
		}
		dry := &model.DryScore{
			Game:      games.IIDX,
			ScoreData: model.ScoreData{Percent: 77.77},
		}

		err := store.InsertTierlistEntry(ctx, &model.TierlistEntry{
			ChartID: "chart-1",
			Kind:    "score",
			Value:   11.5,
		})
		So(err, ShouldBeNil)

		Convey("When computing the rating", func() {
			r, err := rating.KTRating(ctx, store, dry, chart, log)

			Convey("Then the tierlist level replaces the chart level", func() {
				So(err, ShouldBeNil)
				So(r, ShouldAlmostEqual, 11.5, 0.001)
			})
		})
	})
}

func TestLampRating(t *testing.T) {
	Convey("Given a lamp rating computation", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		chart := &model.Chart{ChartID: "chart-1", Game: games.IIDX, LevelNum: 12}

		score := func(lamp string) *model.DryScore {
			return &model.DryScore{
				Game:      games.IIDX,
				ScoreData: model.ScoreData{Lamp: lamp},
			}
		}

		Convey("When the chart has no tierlist data", func() {
			Convey("Then a clear is worth the chart level", func() {
				r, err := rating.LampRating(ctx, store, score("CLEAR"), chart)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 12)
			})

			Convey("Then a fail is worth nothing", func() {
				r, err := rating.LampRating(ctx, store, score("FAILED"), chart)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 0)
			})
		})

		Convey("When the chart has non-monotonic tierlist values", func() {
			// Harder to normal-clear than to hard-clear.
			So(store.InsertTierlistEntry(ctx, &model.TierlistEntry{
				ChartID: "chart-1", Kind: "lamp", Key: "CLEAR", Value: 12.8,
			}), ShouldBeNil)
			So(store.InsertTierlistEntry(ctx, &model.TierlistEntry{
				ChartID: "chart-1", Kind: "lamp", Key: "HARD CLEAR", Value: 12.3,
			}), ShouldBeNil)

			Convey("Then a hard clear takes the maximum over all met lamps", func() {
				r, err := rating.LampRating(ctx, store, score("HARD CLEAR"), chart)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 12.8)
			})

			Convey("Then a fail still earns nothing from the tierlist", func() {
				r, err := rating.LampRating(ctx, store, score("FAILED"), chart)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 0)
			})
		})
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given a chart score population", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When the chart has no scores at all", func() {
			_, ok, err := rating.Percentile(ctx, store, 1000, "chart-1")

			Convey("Then the percentile is not applicable", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the chart has a population", func() {
			for _, s := range []int{100, 200, 300, 400} {
				err := store.InsertScores(ctx, []*model.Score{{
					DryScore: model.DryScore{ScoreData: model.ScoreData{Score: s}},
					ScoreID:  "s",
					ChartID:  "chart-1",
				}})
				So(err, ShouldBeNil)
			}

			Convey("Then the percentile counts strictly worse scores", func() {
				pct, ok, err := rating.Percentile(ctx, store, 300, "chart-1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(pct, ShouldEqual, 50)
			})

			Convey("Then beating everyone yields 100", func() {
				pct, ok, err := rating.Percentile(ctx, store, 500, "chart-1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(pct, ShouldEqual, 100)
			})
		})
	})
}
