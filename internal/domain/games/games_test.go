package games_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/seiseki/internal/domain/games"
)

func TestConf(t *testing.T) {
	Convey("Given the game registry", t, func() {
		Convey("When asking for a supported game", func() {
			conf := games.Conf(games.IIDX)

			Convey("Then its configuration is complete", func() {
				So(conf.Playtypes, ShouldResemble, []games.Playtype{games.PlaytypeSP, games.PlaytypeDP})
				So(conf.Lamps, ShouldNotBeEmpty)
				So(conf.ClearLamp, ShouldEqual, "CLEAR")
				So(conf.ProfileRatingN, ShouldEqual, 20)
			})
		})

		Convey("When asking for an unknown game", func() {
			So(func() { games.Conf(games.Game("popn")) }, ShouldPanic)
			So(games.IsSupported(games.Game("popn")), ShouldBeFalse)
		})

		Convey("When every registered game is checked", func() {
			for _, g := range []games.Game{
				games.IIDX, games.SDVX, games.DDR, games.CHUNITHM,
				games.GITADORA, games.USC, games.BMS,
			} {
				conf := games.Conf(g)
				So(games.IsSupported(g), ShouldBeTrue)
				So(conf.Lamps, ShouldContain, conf.ClearLamp)
				So(conf.PercentMax, ShouldBeGreaterThanOrEqualTo, 100)
			}
		})
	})
}

func TestLampIndex(t *testing.T) {
	Convey("Given the lamp orderings", t, func() {
		Convey("When looking up known lamps", func() {
			So(games.LampIndex(games.IIDX, "NO PLAY"), ShouldEqual, 0)
			So(games.LampIndex(games.IIDX, "FULL COMBO"), ShouldEqual, 7)
			So(games.LampIndex(games.IIDX, "HARD CLEAR"), ShouldBeGreaterThan, games.LampIndex(games.IIDX, "CLEAR"))
		})

		Convey("When looking up an unknown lamp", func() {
			So(games.LampIndex(games.IIDX, "SUPER CLEAR"), ShouldEqual, -1)
		})

		Convey("When comparing against the clear lamp", func() {
			So(games.ClearLampIndex(games.IIDX), ShouldEqual, games.LampIndex(games.IIDX, "CLEAR"))

			// BMS counts easy clears as clears.
			So(games.ClearLampIndex(games.BMS), ShouldEqual, games.LampIndex(games.BMS, "EASY CLEAR"))
		})
	})
}

func TestGradeFromPercent(t *testing.T) {
	Convey("Given the grade band tables", t, func() {
		Convey("When classifying IIDX percents", func() {
			So(games.GradeFromPercent(games.IIDX, 0), ShouldEqual, "F")
			So(games.GradeFromPercent(games.IIDX, 77.77), ShouldEqual, "AA")
			So(games.GradeFromPercent(games.IIDX, 88.87), ShouldEqual, "AA")
			So(games.GradeFromPercent(games.IIDX, 88.88), ShouldEqual, "AAA")
			So(games.GradeFromPercent(games.IIDX, 100), ShouldEqual, "MAX")
		})

		Convey("When classifying a CHUNITHM percent above 100", func() {
			So(games.GradeFromPercent(games.CHUNITHM, 100.80), ShouldEqual, "SSS")
		})
	})
}

func TestExpandDifficulty(t *testing.T) {
	Convey("Given the difficulty alias sets", t, func() {
		Convey("When expanding the SDVX top-difficulty alias", func() {
			So(games.ExpandDifficulty(games.SDVX, "ANY_INF"), ShouldResemble,
				[]string{"INF", "GRV", "HVN", "VVD"})
		})

		Convey("When expanding a plain difficulty", func() {
			So(games.ExpandDifficulty(games.SDVX, "EXH"), ShouldResemble, []string{"EXH"})
			So(games.ExpandDifficulty(games.IIDX, "ANOTHER"), ShouldResemble, []string{"ANOTHER"})
		})
	})
}
