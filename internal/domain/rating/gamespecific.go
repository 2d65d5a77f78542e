package rating

import (
	"context"
	"math"

	"github.com/okian/seiseki/pkg/logger"
	"github.com/okian/seiseki/pkg/metrics"
)

// defaultBPICoefficient is applied when a chart has no per-song power
// coefficient assigned.
const defaultBPICoefficient = 1.175

// bpiPikaGreatFn is the monotonic helper the BPI is built from. At a
// perfect score the ratio term would divide by zero, so that case gets a
// fixed value instead.
func bpiPikaGreatFn(score, max int) float64 {
	if score == max {
		return float64(max) * 0.8
	}
	s := float64(score) / float64(max)
	return 1 + (s-0.5)/(1-s)
}

// BPI calculates the community-standard Beat Performance Index of an IIDX
// score against the chart's kaiden average and world record.
//
// Returns a value floored at -15 with no ceiling: scores above the world
// record exceed 100. Scoring exactly the kaiden average yields 0 and
// exactly the world record yields 100. This is a direct port of the
// reference implementation, quirks included, for consistency with the rest
// of the community.
func BPI(kaidenEx, wrEx, yourEx, max int, coefficient *float64) float64 {
	powCoef := defaultBPICoefficient
	if coefficient != nil {
		powCoef = *coefficient
	}

	yourPGF := bpiPikaGreatFn(yourEx, max)
	kaidenPGF := bpiPikaGreatFn(kaidenEx, max)
	wrPGF := bpiPikaGreatFn(wrEx, max)

	s := yourPGF / kaidenPGF
	z := wrPGF / kaidenPGF

	sign := 1.0
	logS := math.Log(s)
	if yourEx < kaidenEx {
		sign = -1
		logS = -logS
	}

	bpi := sign * 100 * math.Pow(logS/math.Log(z), powCoef)

	// round to 2dp, then floor at -15
	bpi = math.Round(bpi*100) / 100

	return math.Max(-15, bpi)
}

// CHUNITHM score breakpoints for the in-game rating bands.
const (
	chuniSSSBound = 1_007_500
	chuniSSBound  = 1_005_000
	chuniSBound   = 1_000_000
	chuniAABound  = 975_000
	chuniABound   = 925_000
	chuniBBBBound = 900_000
	chuniCBound   = 800_000
)

// CHUNITHMRating calculates the in-game CHUNITHM rating for a score. Each
// score band applies a different linear scale anchored to the chart level.
// Results are floored to 2 decimal places with a floor of 0.
func CHUNITHMRating(score int, levelNum float64) float64 {
	levelBase := levelNum * 100

	var val float64

	switch {
	case score >= chuniSSSBound:
		val = levelBase + 200
	case score >= chuniSSBound:
		val = levelBase + 150 + float64(score-chuniSSBound)*10/500
	case score >= chuniSBound:
		val = levelBase + 100 + float64(score-chuniSBound)*5/100
	case score >= chuniAABound:
		val = levelBase + float64(score-chuniAABound)*2/500
	case score >= chuniABound:
		val = levelBase - 300 + float64(score-chuniABound)*3/500
	case score >= chuniBBBBound:
		val = levelBase - 500 + float64(score-chuniBBBBound)*4/500
	case score >= chuniCBound:
		val = (levelBase-500)/2 + float64(score-chuniCBound)*((levelBase-500)/2)/100_000
	}

	return math.Max(math.Floor(val)/100, 0)
}

// GITADORASkill calculates the in-game GITADORA skill value for a score,
// floored to 2 decimal places.
func GITADORASkill(percent, levelNum float64) float64 {
	return floorToNDP(percent/100*levelNum*20, 2)
}

// mfcLamp is the only lamp MFC points are awarded for.
const mfcLamp = "MARVELOUS FULL COMBO"

// MFCP calculates Marvelous Full Combo Points as used by LIFE4. The second
// return is false when the score is not eligible: wrong lamp, an excluded
// difficulty, or a level below 8.
func MFCP(ctx context.Context, lamp, difficulty string, levelNum float64, log logger.Logger) (float64, bool) {
	if lamp != mfcLamp {
		return 0, false
	}

	// Beginner and BASIC scores are explicitly excluded.
	if difficulty == "BEGINNER" || difficulty == "BASIC" {
		return 0, false
	}

	switch {
	case math.IsNaN(levelNum) || levelNum < 0:
		// failsafe, below
	case levelNum < 8:
		return 0, false
	case levelNum <= 10:
		return 1, true
	case levelNum <= 12:
		return 2, true
	case levelNum == 13:
		return 4, true
	case levelNum == 14:
		return 8, true
	case levelNum == 15:
		return 15, true
	case levelNum >= 16:
		return 25, true
	}

	log.Warn(ctx, "invalid levelNum passed to MFCP",
		logger.Float64("levelNum", levelNum),
	)
	metrics.RecordRatingDiagnostic()

	return 0, false
}

var vf5GradeCoefficients = map[string]float64{
	"S":    1.05,
	"AAA+": 1.02,
	"AAA":  1.0,
	"AA+":  0.97,
	"AA":   0.94,
	"A+":   0.91,
	"A":    0.88,
	"B":    0.85,
	"C":    0.82,
	"D":    0.8,
}

var vf5LampCoefficients = map[string]float64{
	"PERFECT ULTIMATE CHAIN": 1.1,
	"ULTIMATE CHAIN":         1.05,
	"EXCESSIVE CLEAR":        1.02,
	"CLEAR":                  1.0,
	"FAILED":                 0.5,
}

// VF6 calculates VOLFORCE for an SDVX-family score, floored to 3 decimal
// places. The second return is false when the grade or lamp has no
// registered coefficient.
func VF6(ctx context.Context, grade, lamp string, percent, levelNum float64, log logger.Logger) (float64, bool) {
	lampCoefficient, ok := vf5LampCoefficients[lamp]
	if !ok {
		log.Warn(ctx, "invalid lamp passed to VF6", logger.String("lamp", lamp))
		metrics.RecordRatingDiagnostic()
		return 0, false
	}

	gradeCoefficient, ok := vf5GradeCoefficients[grade]
	if !ok {
		log.Warn(ctx, "invalid grade passed to VF6", logger.String("grade", grade))
		metrics.RecordRatingDiagnostic()
		return 0, false
	}

	p := percent / 100
	if levelNum == 0 || p == 0 {
		return 0, true
	}

	return floorToNDP(levelNum*2*p*gradeCoefficient*lampCoefficient/100, 3), true
}
