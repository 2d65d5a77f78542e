package rating_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/seiseki/internal/domain/rating"
	"github.com/okian/seiseki/pkg/logger"
)

func TestBPI(t *testing.T) {
	Convey("Given BPI reference data", t, func() {
		const (
			kaiden = 3000
			wr     = 3200
			max    = 3400
		)

		Convey("When scoring exactly the kaiden average", func() {
			So(rating.BPI(kaiden, wr, kaiden, max, nil), ShouldEqual, 0)
		})

		Convey("When scoring exactly the world record", func() {
			So(rating.BPI(kaiden, wr, wr, max, nil), ShouldEqual, 100)
		})

		Convey("When scoring between the two", func() {
			bpi := rating.BPI(kaiden, wr, 3100, max, nil)
			So(bpi, ShouldBeGreaterThan, 0)
			So(bpi, ShouldBeLessThan, 100)
		})

		Convey("When scoring far below the kaiden average", func() {
			Convey("Then the value floors at -15", func() {
				So(rating.BPI(kaiden, wr, 500, max, nil), ShouldEqual, -15)
			})
		})

		Convey("When the value rises monotonically with score", func() {
			prev := -16.0
			for ex := 2000; ex <= max; ex += 100 {
				bpi := rating.BPI(kaiden, wr, ex, max, nil)
				So(bpi, ShouldBeGreaterThanOrEqualTo, prev)
				prev = bpi
			}
		})

		Convey("When a per-song coefficient applies", func() {
			coef := 1.5
			withCoef := rating.BPI(kaiden, wr, 3100, max, &coef)
			withDefault := rating.BPI(kaiden, wr, 3100, max, nil)

			Convey("Then it changes the result", func() {
				So(withCoef, ShouldNotEqual, withDefault)
			})
		})
	})
}

func TestCHUNITHMRating(t *testing.T) {
	Convey("Given the CHUNITHM rating bands", t, func() {
		Convey("When hitting the SSS bound", func() {
			So(rating.CHUNITHMRating(1_007_500, 12), ShouldEqual, 14)
		})

		Convey("When hitting the SS bound", func() {
			So(rating.CHUNITHMRating(1_005_000, 12), ShouldEqual, 13.5)
		})

		Convey("When hitting the S bound", func() {
			So(rating.CHUNITHMRating(1_000_000, 12), ShouldEqual, 13)
		})

		Convey("When hitting the AA bound", func() {
			So(rating.CHUNITHMRating(975_000, 12), ShouldEqual, 12)
		})

		Convey("When scoring below every band", func() {
			So(rating.CHUNITHMRating(700_000, 12), ShouldEqual, 0)
		})

		Convey("When a low score on a low chart would go negative", func() {
			Convey("Then the value floors at 0", func() {
				So(rating.CHUNITHMRating(900_000, 1), ShouldEqual, 0)
			})
		})
	})
}

func TestGITADORASkill(t *testing.T) {
	Convey("Given the GITADORA skill formula", t, func() {
		Convey("When playing perfectly", func() {
			So(rating.GITADORASkill(100, 5.0), ShouldEqual, 100)
		})

		Convey("When the result needs flooring", func() {
			// 85.55 / 100 * 4.3 * 20 = 73.573
			So(rating.GITADORASkill(85.55, 4.3), ShouldEqual, 73.57)
		})
	})
}

func TestMFCP(t *testing.T) {
	Convey("Given the MFC point table", t, func() {
		ctx := context.Background()
		log := logger.Get()

		mfcp := func(lamp, difficulty string, level float64) (float64, bool) {
			return rating.MFCP(ctx, lamp, difficulty, level, log)
		}

		Convey("When the lamp is not a marvelous full combo", func() {
			_, ok := mfcp("PERFECT FULL COMBO", "EXPERT", 14)
			So(ok, ShouldBeFalse)
		})

		Convey("When the difficulty is excluded", func() {
			_, ok := mfcp("MARVELOUS FULL COMBO", "BEGINNER", 14)
			So(ok, ShouldBeFalse)

			_, ok = mfcp("MARVELOUS FULL COMBO", "BASIC", 14)
			So(ok, ShouldBeFalse)
		})

		Convey("When the level is below the point table", func() {
			_, ok := mfcp("MARVELOUS FULL COMBO", "EXPERT", 7)
			So(ok, ShouldBeFalse)
		})

		Convey("When the lamp and level qualify", func() {
			cases := []struct {
				level float64
				want  float64
			}{
				{8, 1}, {10, 1}, {11, 2}, {12, 2},
				{13, 4}, {14, 8}, {15, 15}, {16, 25}, {19, 25},
			}
			for _, c := range cases {
				got, ok := mfcp("MARVELOUS FULL COMBO", "EXPERT", c.level)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, c.want)
			}
		})

		Convey("When the level is garbage", func() {
			_, ok := mfcp("MARVELOUS FULL COMBO", "EXPERT", -3)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestVF6(t *testing.T) {
	Convey("Given the VOLFORCE formula", t, func() {
		ctx := context.Background()
		log := logger.Get()

		Convey("When the score is a perfect ultimate chain", func() {
			vf, ok := rating.VF6(ctx, "S", "PERFECT ULTIMATE CHAIN", 100, 20, log)
			So(ok, ShouldBeTrue)
			So(vf, ShouldEqual, 0.462)
		})

		Convey("When the lamp is unknown", func() {
			_, ok := rating.VF6(ctx, "S", "SPLENDID CLEAR", 100, 20, log)
			So(ok, ShouldBeFalse)
		})

		Convey("When the grade is unknown", func() {
			_, ok := rating.VF6(ctx, "Z", "CLEAR", 100, 20, log)
			So(ok, ShouldBeFalse)
		})

		Convey("When the chart has no level", func() {
			vf, ok := rating.VF6(ctx, "S", "CLEAR", 100, 0, log)
			So(ok, ShouldBeTrue)
			So(vf, ShouldEqual, 0)
		})
	})
}
